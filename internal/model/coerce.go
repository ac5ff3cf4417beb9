package model

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	percentPattern = regexp.MustCompile(`([-+]?\d+(?:\.\d+)?)\s*%`)
	numberPattern  = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
	currencyNoise  = strings.NewReplacer(",", "", "₹", "", "$", "", "Rs.", "", "INR", "", " ", "")
)

// CoerceNumber 将单元格值宽松地转换为数值，无法识别时返回 0
//
// 依次尝试：原生数值、完整数字文本、百分比文本、文本中的第一个数字。
func CoerceNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case json.Number:
		return coerceText(x.String())
	case string:
		return coerceText(x)
	case bool:
		return 0
	default:
		return coerceText(fmt.Sprint(x))
	}
}

func coerceText(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	cleaned := currencyNoise.Replace(s)
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return finite(f)
	}

	// 百分比取数值部分
	if m := percentPattern.FindStringSubmatch(cleaned); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return finite(f)
		}
	}

	if m := numberPattern.FindString(cleaned); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return finite(f)
		}
	}
	return 0
}

// IsFinite 判断数值是否为有限值
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
