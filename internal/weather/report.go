package weather

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Report is one weather observation or forecast entry, fully populated or
// not returned at all.
type Report struct {
	City        string
	Description string
	Temp        float64
	Pressure    int
	Humidity    int
	WindSpeed   float64
	At          time.Time // set for forecast entries only
}

// Render formats a current-conditions report as a Telegram Markdown message.
func Render(r Report) string {
	return fmt.Sprintf("*%s*\n_%s_\n*Temp:* _%.1f°C_\n*Pressure:* _%d hPa_\n*Humidity:* _%d%%_\n*Wind:* _%.1f m/s_\n",
		r.City, capitalize(r.Description), r.Temp, r.Pressure, r.Humidity, r.WindSpeed)
}

// RenderForecast formats a forecast entry; the header is the entry timestamp
// rather than the city, which goes into a single leading message.
func RenderForecast(r Report) string {
	return fmt.Sprintf("*%s*\n_%s_\n*Temp:* _%.1f°C_\n*Pressure:* _%d hPa_\n*Humidity:* _%d%%_\n*Wind:* _%.1f m/s_\n",
		r.At.Format("2006-01-02 15:04"), capitalize(r.Description), r.Temp, r.Pressure, r.Humidity, r.WindSpeed)
}

// City extracts the city line from a rendered report.
func City(rendered string) string {
	line, _, _ := strings.Cut(rendered, "\n")
	return strings.Trim(line, "*")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
