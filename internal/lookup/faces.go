package lookup

import "strconv"

// Mood faces, rows by valence band (0.0, 0.2, 0.4, 0.6, 0.8), columns by arousal
// band (0.0, 0.3, 0.6, 0.9).
var moodFaceNames = [][]string{
	{"frowning", "crying", "crying_loud", "crying_loud"},
	{"pensive", "frowning_slight", "anguished", "anguished"},
	{"expressionless", "neutral", "open_mouth", "open_mouth"},
	{"relieved", "smiling_slight", "grinning", "grinning"},
	{"smiling", "smiling_eyes", "grinning_eyes", "grinning_eyes"},
}

// Sleep faces by wakefulness band (0.00, 0.25, 0.50, 0.75).
var sleepFaceNames = []string{"sleeping", "sleepy", "no_mouth", "no_mouth"}

const (
	ValenceBandWidth     = 0.2
	ArousalBandWidth     = 0.3
	WakefulnessBandWidth = 0.25
)

func face(prefix, name string) string {
	return prefix + "face_" + name + ".png"
}

// MoodFaces returns the valence x arousal expression table with asset ids under prefix.
func MoodFaces(prefix string) Table2D {
	assets := make([][]string, len(moodFaceNames))
	for i, row := range moodFaceNames {
		assets[i] = make([]string, len(row))
		for j, n := range row {
			assets[i][j] = face(prefix, n)
		}
	}
	t, err := NewTable2D(UniformBands(ValenceBandWidth), UniformBands(ArousalBandWidth), assets)
	if err != nil {
		panic(err)
	}
	return t
}

// SleepFaces returns the wakefulness table with asset ids under prefix.
func SleepFaces(prefix string) Table1D {
	assets := make([]string, len(sleepFaceNames))
	for i, n := range sleepFaceNames {
		assets[i] = face(prefix, n)
	}
	t, err := NewTable1D(UniformBands(WakefulnessBandWidth), assets)
	if err != nil {
		panic(err)
	}
	return t
}

// ClockFace returns the pre-rendered clock asset for hour. Hours wrap modulo 24.
func ClockFace(prefix string, hour int) string {
	hour %= 24
	if hour < 0 {
		hour += 24
	}
	return prefix + "clock_" + strconv.Itoa(hour) + ".png"
}
