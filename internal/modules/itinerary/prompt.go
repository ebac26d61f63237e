// README: Prompt builder; turns a TripRequest into system + user instructions with an embedded JSON template.
package itinerary

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Prompt is the pair of messages sent to the gateway.
type Prompt struct {
	System string
	User   string
}

const systemInstruction = "Bạn là một chuyên gia du lịch. Luôn trả về JSON hợp lệ theo đúng cấu trúc được yêu cầu. KHÔNG sử dụng markdown code fences."

const noFenceRule = "TUYỆT ĐỐI KHÔNG bọc kết quả trong markdown code fences (như ```json ... ```). Chỉ trả về một đối tượng JSON duy nhất, không kèm lời dẫn."

const currencyLabel = "VNĐ"

// shortSingleDayRule only ever appears in the short-trip template.
const shortSingleDayRule = `"timeline" phải có ĐÚNG MỘT phần tử với "day" là "Hôm nay".`

const shortItemCountRule = `"schedule" gồm từ 4 đến 6 hoạt động, tất cả nằm gọn trong khung giờ đã cho.`

var amountPrinter = message.NewPrinter(language.Vietnamese)

type budgetTier int

const (
	tierLow budgetTier = iota
	tierMedium
	tierHigh
)

var (
	longTierLimits  = [2]int64{2_000_000, 5_000_000}
	shortTierLimits = [2]int64{500_000, 2_000_000}
)

func tierFor(budget int64, limits [2]int64) budgetTier {
	switch {
	case budget < limits[0]:
		return tierLow
	case budget < limits[1]:
		return tierMedium
	default:
		return tierHigh
	}
}

func (t budgetTier) longDescription() string {
	switch t {
	case tierLow:
		return "Tiết kiệm (ưu tiên lựa chọn miễn phí hoặc giá rẻ, ăn uống bình dân, ở homestay/nhà nghỉ)"
	case tierMedium:
		return "Trung bình (cân bằng chi phí và trải nghiệm, nhà hàng tầm trung, khách sạn 3 sao)"
	default:
		return "Thoải mái (ưu tiên trải nghiệm cao cấp, nhà hàng nổi tiếng, khách sạn 4-5 sao hoặc resort)"
	}
}

func (t budgetTier) shortDescription() string {
	switch t {
	case tierLow:
		return "Tiết kiệm (quán bình dân, hoạt động miễn phí, đi bộ hoặc xe buýt)"
	case tierMedium:
		return "Vừa phải (quán được đánh giá tốt, có thể đi taxi/xe công nghệ)"
	default:
		return "Thoải mái (nhà hàng, quán bar và trải nghiệm cao cấp)"
	}
}

// BuildPrompt renders the instructions for one request. It never fails and
// performs no validation.
func BuildPrompt(req TripRequest) Prompt {
	var user string
	if req.Mode == ModeShort {
		user = buildShortPrompt(req)
	} else {
		user = buildLongPrompt(req)
	}
	return Prompt{System: systemInstruction, User: user}
}

func durationText(d Duration) string {
	if d.Days <= 0 {
		return "Chuyến đi trong ngày"
	}
	text := fmt.Sprintf("%d ngày", d.Days)
	if d.Nights > 0 {
		text += fmt.Sprintf(" %d đêm", d.Nights)
	}
	return text
}

func formatAmount(v int64) string {
	return amountPrinter.Sprintf("%d", v)
}

func joinMoods(phrases []string) string {
	if len(phrases) == 0 {
		return balancedMood
	}
	return strings.Join(phrases, " ")
}

func personalNoteLine(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return ""
	}
	return fmt.Sprintf("- Ghi chú riêng của người dùng (HÃY ĐẶC BIỆT LƯU Ý và ưu tiên điều này khi lên lịch trình): %q\n", note)
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

func buildLongPrompt(req TripRequest) string {
	var b strings.Builder
	b.WriteString("Bạn là một chuyên gia du lịch ảo am hiểu và sáng tạo. Hãy lập một kế hoạch du lịch chi tiết, hấp dẫn và thực tế theo yêu cầu dưới đây.\n\n")
	b.WriteString("Yêu cầu của người dùng:\n")
	fmt.Fprintf(&b, "- Nơi khởi hành: %s\n", orDefault(req.StartLocation, "Không xác định."))
	fmt.Fprintf(&b, "- Điểm đến: %s\n", orDefault(req.Destination, "Chưa chọn. Hãy gợi ý MỘT địa điểm du lịch cụ thể, thú vị và phù hợp với tâm trạng bên dưới."))
	if s := strings.TrimSpace(req.StartDate); s != "" {
		fmt.Fprintf(&b, "- Ngày khởi hành dự kiến: %s\n", s)
	}
	fmt.Fprintf(&b, "- Thời gian: %s\n", durationText(req.Duration))
	fmt.Fprintf(&b, "- Ngân sách mỗi người (ước tính): %s %s (%s)\n",
		formatAmount(req.Budget), currencyLabel, tierFor(req.Budget, longTierLimits).longDescription())
	fmt.Fprintf(&b, "- Tâm trạng mong muốn: %s\n", joinMoods(moodPhrases(req.Moods)))
	b.WriteString(personalNoteLine(req.PersonalNote))

	b.WriteString("\nHãy trả về lịch trình dưới dạng một đối tượng JSON duy nhất.\n")
	b.WriteString(noFenceRule + "\n")
	b.WriteString("Quy tắc nội dung:\n")
	b.WriteString(`- "timeline" có một phần tử cho mỗi ngày của chuyến đi.` + "\n")
	b.WriteString(`- Mỗi ngày có "weather_note" và "weather" (dự báo tình trạng, nhiệt độ, khả năng mưa) cho đúng điểm đến và thời điểm.` + "\n")
	b.WriteString(`- Mỗi hoạt động trong "schedule" có "venue", "estimated_cost", "google_maps_link" và mảng "travel_tips" gợi ý cách di chuyển từ địa điểm TRƯỚC ĐÓ (hoạt động đầu ngày xuất phát từ nơi ở được gợi ý). Mỗi mẹo có "method", "duration", "notes" và "google_maps_link" (URL chỉ đường).` + "\n")
	b.WriteString(`- "packing_suggestions" dựa trên thời tiết dự báo.` + "\n")
	b.WriteString(`- "traffic_alerts" và "safety_alerts" liệt kê cảnh báo thực tế; để mảng rỗng [] nếu không có.` + "\n")
	b.WriteString(`- "budget_summary" ước tính tổng chi phí cả chuyến, chia theo hạng mục, và so sánh với ngân sách trong "vs_budget_note".` + "\n")
	b.WriteString("\nCấu trúc JSON bắt buộc (giữ nguyên tên các trường):\n")
	b.WriteString(longTemplate)
	b.WriteString("\nHãy đảm bảo địa điểm, món ăn và nơi ở là có thật, phù hợp với điểm đến và ngân sách đã cho.\n")
	return b.String()
}

func timeWindow(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("từ %s đến %s", start, end)
	case start != "":
		return fmt.Sprintf("bắt đầu từ %s", start)
	case end != "":
		return fmt.Sprintf("kết thúc trước %s", end)
	default:
		return "linh hoạt trong ngày"
	}
}

func buildShortPrompt(req TripRequest) string {
	var b strings.Builder
	b.WriteString("Bạn là một người bản địa sành điệu, am hiểu những địa điểm đang được yêu thích. Hãy lên kế hoạch cho một buổi đi chơi ngắn trong thành phố theo yêu cầu dưới đây.\n\n")
	b.WriteString("Yêu cầu của người dùng:\n")
	fmt.Fprintf(&b, "- Điểm xuất phát: %s\n", orDefault(req.StartLocation, "Không xác định."))
	fmt.Fprintf(&b, "- Khu vực muốn đi: %s\n", orDefault(req.Destination, "Chưa chọn. Hãy chọn MỘT khu vực thú vị gần điểm xuất phát."))
	fmt.Fprintf(&b, "- Khung giờ: %s\n", timeWindow(req.StartTime, req.EndTime))
	fmt.Fprintf(&b, "- Ngân sách cho cả buổi (ước tính): %s %s (%s)\n",
		formatAmount(req.Budget), currencyLabel, tierFor(req.Budget, shortTierLimits).shortDescription())
	fmt.Fprintf(&b, "- Tâm trạng mong muốn: %s\n", joinMoods(shortMoodPhrases(req.ShortMoods)))
	b.WriteString(personalNoteLine(req.PersonalNote))

	b.WriteString("\nHãy trả về kế hoạch dưới dạng một đối tượng JSON duy nhất.\n")
	b.WriteString(noFenceRule + "\n")
	b.WriteString("Quy tắc nội dung:\n")
	b.WriteString("- " + shortSingleDayRule + "\n")
	b.WriteString("- " + shortItemCountRule + "\n")
	b.WriteString(`- Mỗi hoạt động có "venue", "estimated_cost", "google_maps_link" và "travel_tips" từ địa điểm trước đó.` + "\n")
	b.WriteString(`- Với địa điểm đang thịnh hành, đặt "is_trending": true và giải thích ngắn trong "trending_reason"; ngược lại đặt "is_trending": false và bỏ trống "trending_reason".` + "\n")
	b.WriteString(`- "accommodation" và "packing_suggestions" BẮT BUỘC là mảng rỗng [].` + "\n")
	b.WriteString("\nCấu trúc JSON bắt buộc (giữ nguyên tên các trường):\n")
	b.WriteString(shortTemplate)
	b.WriteString("\nChỉ gợi ý địa điểm có thật và đang hoạt động.\n")
	return b.String()
}

const longTemplate = `{
  "destination": "Tên địa điểm cụ thể (ví dụ: Hội An, Quảng Nam)",
  "overview": "Đoạn văn ngắn (3-4 câu) truyền cảm hứng về chuyến đi, hợp với tâm trạng đã chọn.",
  "timeline": [
    {
      "day": "Ngày 1",
      "title": "Tiêu đề hấp dẫn cho ngày",
      "weather_note": "Nhận xét ngắn về thời tiết và lời khuyên trang phục.",
      "weather": { "condition": "Nắng nhẹ", "temperature": "24-31°C", "rain_chance": "20%" },
      "schedule": [
        {
          "time": "08:00 - 09:00",
          "activity": "Mô tả hoạt động",
          "venue": "Tên địa điểm, khu vực",
          "estimated_cost": "50.000 - 80.000 VNĐ/người",
          "google_maps_link": "https://www.google.com/maps/search/?api=1&query=...",
          "travel_tips": [
            {
              "method": "Đi bộ",
              "duration": "Khoảng 10 phút",
              "notes": "Ghi chú ngắn về tuyến đường",
              "google_maps_link": "https://www.google.com/maps/dir/?api=1&origin=...&destination=...&travelmode=walking"
            }
          ]
        }
      ]
    }
  ],
  "food": [
    { "name": "Tên món", "description": "Mô tả ngắn" }
  ],
  "accommodation": [
    { "name": "Tên nơi ở", "type": "Homestay", "reason": "Lý do phù hợp" }
  ],
  "tips": [
    "Mẹo du lịch hữu ích"
  ],
  "packing_suggestions": [
    "Áo khoác mỏng"
  ],
  "traffic_alerts": [],
  "safety_alerts": [],
  "budget_summary": {
    "total_estimated": "2.800.000 VNĐ/người",
    "breakdown": [
      { "category": "Lưu trú", "amount": "900.000 VNĐ", "note": "1 đêm homestay" }
    ],
    "vs_budget_note": "Nằm trong ngân sách, còn dư khoảng 200.000 VNĐ."
  }
}
`

const shortTemplate = `{
  "destination": "Tên khu vực cụ thể (ví dụ: Phố cổ Hà Nội)",
  "overview": "Hai đến ba câu mô tả buổi đi chơi.",
  "timeline": [
    {
      "day": "Hôm nay",
      "title": "Tiêu đề cho buổi đi chơi",
      "schedule": [
        {
          "time": "14:00 - 15:00",
          "activity": "Mô tả hoạt động",
          "venue": "Tên địa điểm",
          "estimated_cost": "60.000 VNĐ/người",
          "google_maps_link": "https://www.google.com/maps/search/?api=1&query=...",
          "travel_tips": [
            {
              "method": "Xe công nghệ",
              "duration": "Khoảng 15 phút",
              "notes": "Ghi chú ngắn",
              "google_maps_link": "https://www.google.com/maps/dir/?api=1&origin=...&destination=..."
            }
          ],
          "is_trending": true,
          "trending_reason": "Vì sao địa điểm này đang hot"
        }
      ]
    }
  ],
  "food": [
    { "name": "Tên món", "description": "Mô tả ngắn" }
  ],
  "accommodation": [],
  "packing_suggestions": [],
  "tips": [
    "Mẹo hữu ích cho buổi đi chơi"
  ]
}
`
