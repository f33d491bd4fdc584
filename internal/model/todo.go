package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ID is the server-assigned identifier of a todo. The client treats it as
// opaque; it only ever travels back to the server inside a URL path.
type ID string

func (id ID) String() string { return string(id) }

// MarshalJSON writes numeric ids as JSON numbers so they round-trip with
// servers that key todos by an integer column.
func (id ID) MarshalJSON() ([]byte, error) {
	if isCanonicalInt(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// isCanonicalInt reports whether s is a non-negative integer that is also a
// valid JSON number, i.e. no sign and no leading zeros.
func isCanonicalInt(s string) bool {
	if s == "" || len(s) > 1 && s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Todo is one record as last read from the server.
type Todo struct {
	ID        ID
	Title     string
	Completed bool
}

// Input carries the mutable fields of a todo. Writes always send both.
type Input struct {
	Title     string
	Completed bool
}

// Input returns the todo's current mutable fields.
func (t Todo) Input() Input { return Input{Title: t.Title, Completed: t.Completed} }

type wireTodo struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Completed Truthy `json:"completed"`
}

type wireInput struct {
	Title     string `json:"title"`
	Completed Bit    `json:"completed"`
}

type wireTodoOut struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Completed Bit    `json:"completed"`
}

func (t Todo) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireTodoOut{ID: t.ID, Title: t.Title, Completed: Bit(t.Completed)})
}

func (t *Todo) UnmarshalJSON(b []byte) error {
	var w wireTodo
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = Todo{ID: w.ID, Title: w.Title, Completed: bool(w.Completed)}
	return nil
}

func (in Input) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireInput{Title: in.Title, Completed: Bit(in.Completed)})
}

func (in *Input) UnmarshalJSON(b []byte) error {
	var w struct {
		Title     *string `json:"title"`
		Completed Truthy  `json:"completed"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	in.Title = ""
	if w.Title != nil {
		in.Title = *w.Title
	}
	in.Completed = bool(w.Completed)
	return nil
}

// Bit is a boolean written as the integer 0 or 1.
type Bit bool

func (b Bit) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// Truthy is a boolean read with JavaScript truthiness: false, null, 0, NaN
// and "" are false, every other value is true.
type Truthy bool

func (t *Truthy) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = false
	case bool:
		*t = Truthy(x)
	case string:
		*t = x != ""
	case json.Number:
		f, err := x.Float64()
		if errors.Is(err, strconv.ErrRange) {
			// Too large for a float64, so certainly nonzero.
			*t = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("completed: %w", err)
		}
		*t = Truthy(f != 0 && !math.IsNaN(f))
	default:
		*t = true
	}
	return nil
}
