package config

type Config struct {
	InputPath       string
	OutputDir       string
	DetectorVariant string
	InsetRatio      float64
	DetectMaxSide   int
	JournalPath     string
	SaveJournal     string
	Sheets          bool
	QRStamp         bool
	Workers         int
	DPI             int
	ShowStats       bool
	BuildVersion    string
}
