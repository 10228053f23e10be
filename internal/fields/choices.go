package fields

// Choice is one entry of an enumerated code set.
type Choice struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Choices is an ordered, enumerated code set.
type Choices []Choice

func (c Choices) Codes() []string {
	codes := make([]string, len(c))
	for i, choice := range c {
		codes[i] = choice.Code
	}
	return codes
}

func (c Choices) Contains(code string) bool {
	_, ok := c.Label(code)
	return ok
}

func (c Choices) Label(code string) (string, bool) {
	for _, choice := range c {
		if choice.Code == code {
			return choice.Label, true
		}
	}
	return "", false
}

func (c Choices) values() []interface{} {
	values := make([]interface{}, len(c))
	for i, choice := range c {
		values[i] = choice.Code
	}
	return values
}
