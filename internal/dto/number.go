package dto

import (
	"bytes"
	"fmt"
	"strconv"
)

// Number is an integer request field that also accepts its decimal string
// form ("3"), as sent by HTML forms serialised to JSON.
type Number int64

// UnmarshalJSON implements json.Unmarshaler. null leaves the value unset.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return fmt.Errorf("invalid integer %s: %w", text, err)
		}
		text = string(bytes.TrimSpace([]byte(unquoted)))
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", string(data))
	}
	*n = Number(v)
	return nil
}

// Int64 returns n as an int64.
func (n Number) Int64() int64 { return int64(n) }

// Int returns n as an int.
func (n Number) Int() int { return int(n) }
