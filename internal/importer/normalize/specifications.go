package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawSpecificationsKey — ключ, под который складывается неструктурированный
// текст характеристик.
const RawSpecificationsKey = "raw_specifications"

// Specifications приводит строку характеристик товара к отображению ключ-значение.
// Поддерживаются три формата исходных данных:
//   - JSON-объект ({"вес": "5 кг"});
//   - строка вида "ключ:значение;ключ:значение";
//   - произвольный текст, который целиком кладётся под RawSpecificationsKey.
//
// Некорректный JSON не считается ошибкой записи и деградирует до третьего варианта.
func Specifications(s string) map[string]string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if specs := fromJSON(trimmed); specs != nil {
			return specs
		}
		return map[string]string{RawSpecificationsKey: trimmed}
	}

	if specs := fromPairs(trimmed); specs != nil {
		return specs
	}

	return map[string]string{RawSpecificationsKey: trimmed}
}

// fromJSON разбирает JSON-объект, приводя значения к строкам.
// Массивы и вложенные объекты сериализуются обратно в компактный JSON.
func fromJSON(s string) map[string]string {
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}

	specs := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			specs[key] = v
		case nil:
			specs[key] = ""
		case float64, bool:
			specs[key] = fmt.Sprint(v)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				specs[key] = fmt.Sprint(v)
				continue
			}
			specs[key] = string(data)
		}
	}

	return specs
}

// fromPairs разбирает строку "ключ:значение;ключ:значение".
func fromPairs(s string) map[string]string {
	if !strings.Contains(s, ":") {
		return nil
	}

	specs := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		key, value, found := strings.Cut(pair, ":")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		specs[key] = strings.TrimSpace(value)
	}

	if len(specs) == 0 {
		return nil
	}

	return specs
}
