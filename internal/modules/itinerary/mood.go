// README: Closed mood vocabularies and their prompt phrases.
package itinerary

// Mood is a long-trip mood tag.
type Mood string

const (
	MoodRelax     Mood = "relax"
	MoodExplore   Mood = "explore"
	MoodNature    Mood = "nature"
	MoodRomantic  Mood = "romantic"
	MoodAdventure Mood = "adventure"
	MoodCultural  Mood = "cultural"
)

// AllMoods lists every Mood value. A new value must be added here and to phrase.
var AllMoods = []Mood{MoodRelax, MoodExplore, MoodNature, MoodRomantic, MoodAdventure, MoodCultural}

func (m Mood) phrase() (string, bool) {
	switch m {
	case MoodRelax:
		return "Thư giãn, nghỉ dưỡng, nhịp độ nhẹ nhàng.", true
	case MoodExplore:
		return "Năng động, khám phá văn hóa, lịch sử và các hoạt động sôi nổi.", true
	case MoodNature:
		return "Hòa mình vào thiên nhiên, đi bộ đường dài, ngắm cảnh hoang sơ.", true
	case MoodRomantic:
		return "Lãng mạn, dành cho cặp đôi, không gian riêng tư và ngọt ngào.", true
	case MoodAdventure:
		return "Mạo hiểm, thử thách bản thân với leo núi, trekking, lặn biển.", true
	case MoodCultural:
		return "Tìm hiểu sâu văn hóa, nghệ thuật, bảo tàng, di tích và làng nghề truyền thống.", true
	}
	return "", false
}

// ShortMood is a mood tag for a same-day outing.
type ShortMood string

const (
	ShortMoodCafe      ShortMood = "cafe"
	ShortMoodFoodie    ShortMood = "foodie"
	ShortMoodPhoto     ShortMood = "photo"
	ShortMoodNightlife ShortMood = "nightlife"
	ShortMoodShopping  ShortMood = "shopping"
	ShortMoodChill     ShortMood = "chill"
)

// AllShortMoods lists every ShortMood value.
var AllShortMoods = []ShortMood{ShortMoodCafe, ShortMoodFoodie, ShortMoodPhoto, ShortMoodNightlife, ShortMoodShopping, ShortMoodChill}

func (m ShortMood) phrase() (string, bool) {
	switch m {
	case ShortMoodCafe:
		return "Cà phê đẹp, yên tĩnh, có góc ngồi lâu.", true
	case ShortMoodFoodie:
		return "Ăn uống, món địa phương và quán đang được yêu thích.", true
	case ShortMoodPhoto:
		return "Check-in, chụp ảnh, góc phố và cảnh quan đẹp.", true
	case ShortMoodNightlife:
		return "Về đêm, phố đi bộ, bar, nhạc sống.", true
	case ShortMoodShopping:
		return "Mua sắm, chợ, cửa hàng thủ công và trung tâm thương mại.", true
	case ShortMoodChill:
		return "Thong thả, đi dạo, công viên, ít di chuyển.", true
	}
	return "", false
}

const balancedMood = "Cân bằng, không có tâm trạng cụ thể. Hãy kết hợp hài hòa nhiều loại hoạt động."

func moodPhrases(moods []Mood) []string {
	var out []string
	for _, m := range moods {
		if p, ok := m.phrase(); ok {
			out = append(out, p)
		}
	}
	return out
}

func shortMoodPhrases(moods []ShortMood) []string {
	var out []string
	for _, m := range moods {
		if p, ok := m.phrase(); ok {
			out = append(out, p)
		}
	}
	return out
}
