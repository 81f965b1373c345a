package features

import "strconv"

// Column names the models were trained with.
const (
	ColHour           = "hour"
	ColMinute         = "minute"
	ColFirstSlot      = "is_first_slot"
	ColSecondSlot     = "is_second_slot"
	ColTotalPatients  = "total_outpatient_count"
	ColHoliday        = "is_holiday"
	ColMonth          = "月"
	ColWeekOfMonth    = "週回数"
	ColPrevDayHoliday = "前日祝日フラグ"
	ColRain           = "雨フラグ"
	ColSnow           = "雪フラグ"
	ColLag30          = "lag_30min"
	ColLag60          = "lag_60min"
	ColLag90          = "lag_90min"
	ColReception      = "reception_count"
	ColQueueAtStart   = "queue_at_start_of_slot"

	weatherPrefix   = "天気カテゴリ_"
	dayOfWeekPrefix = "dayofweek_"
)

// WeatherColumn returns the one-hot column for a weather token.
func WeatherColumn(token string) string { return weatherPrefix + token }

// DayOfWeekColumn returns the one-hot column for a Monday=0 weekday index.
func DayOfWeekColumn(dow int) string { return dayOfWeekPrefix + strconv.Itoa(dow) }
