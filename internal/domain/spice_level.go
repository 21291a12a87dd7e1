package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

type SpiceLevel string

const (
	SpiceMild   SpiceLevel = "MILD"
	SpiceMedium SpiceLevel = "MEDIUM"
	SpiceHot    SpiceLevel = "HOT"
)

var SpiceLevels = []SpiceLevel{SpiceMild, SpiceMedium, SpiceHot}

// 旧数据和不同的前端页面用过 LOW/HIGH/SPICY 等写法，统一映射到三个规范值
var spiceAliases = map[string]SpiceLevel{
	"MILD":   SpiceMild,
	"LOW":    SpiceMild,
	"MEDIUM": SpiceMedium,
	"HOT":    SpiceHot,
	"SPICY":  SpiceHot,
	"HIGH":   SpiceHot,
}

func ParseSpiceLevel(s string) (SpiceLevel, error) {
	level, ok := spiceAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown spice level %q", s)
	}
	return level, nil
}

// Valid 只接受规范值，别名需要先经过 ParseSpiceLevel
func (l SpiceLevel) Valid() bool {
	return slices.Contains(SpiceLevels, l)
}

func (l *SpiceLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*l = ""
		return nil
	}

	level, err := ParseSpiceLevel(s)
	if err != nil {
		return err
	}
	*l = level
	return nil
}
