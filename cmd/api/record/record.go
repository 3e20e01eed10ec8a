package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// AcquisitionRecord is one book-loan entry of the register, keyed by AcquisitionNumber.
// Every field is kept the way the form sends it; dates and numbers stay string-encoded.
type AcquisitionRecord struct {
	AcquisitionNumber string `validate:"required"`
	DateEntry         string `validate:"omitempty,datetime=2006-01-02"`
	ClassNumber       string
	BookTitle         string
	Publisher         string
	PublicationDate   string `validate:"omitempty,datetime=2006-01-02"`
	Pages             string
	Price             string
	Medium            string
	DateReturn        string `validate:"omitempty,datetime=2006-01-02"`
	Notes             string
	StudentName       string
	StudentClass      string
	BorrowDate        string `validate:"omitempty,datetime=2006-01-02"`
	DueDate           string `validate:"omitempty,datetime=2006-01-02"`

	// Extra holds members of a restored record that are not part of the form, as compact JSON.
	Extra map[string]json.RawMessage `validate:"-"`
}

// Fields lists the JSON names of the form fields, in form order.
var Fields = []string{
	"acquisitionNumber",
	"dateEntry",
	"classNumber",
	"bookTitle",
	"publisher",
	"publicationDate",
	"pages",
	"price",
	"medium",
	"dateReturn",
	"notes",
	"studentName",
	"studentClass",
	"borrowDate",
	"dueDate",
}

var ErrMissingKey = errors.New("record has no acquisition number")

func (r *AcquisitionRecord) fieldPointers() []*string {
	return []*string{
		&r.AcquisitionNumber,
		&r.DateEntry,
		&r.ClassNumber,
		&r.BookTitle,
		&r.Publisher,
		&r.PublicationDate,
		&r.Pages,
		&r.Price,
		&r.Medium,
		&r.DateReturn,
		&r.Notes,
		&r.StudentName,
		&r.StudentClass,
		&r.BorrowDate,
		&r.DueDate,
	}
}

/* Returns the value of the form field with that JSON name. */
func (r AcquisitionRecord) Field(name string) (string, bool) {
	for i, p := range r.fieldPointers() {
		if Fields[i] == name {
			return *p, true
		}
	}
	return "", false
}

// IsField reports whether name is one of the form fields.
func IsField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

/* Returns the string form of every field, the extras last in key order. */
func (r AcquisitionRecord) Values() []string {
	ptrs := r.fieldPointers()
	values := make([]string, 0, len(ptrs)+len(r.Extra))
	for _, p := range ptrs {
		values = append(values, *p)
	}
	for _, k := range r.extraKeys() {
		values = append(values, rawText(r.Extra[k]))
	}
	return values
}

// Clone returns a deep copy, so stored records never share Extra with callers.
func (r AcquisitionRecord) Clone() AcquisitionRecord {
	c := r
	if r.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

func (r AcquisitionRecord) extraKeys() []string {
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		if IsField(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r AcquisitionRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range r.fieldPointers() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, Fields[i], json.RawMessage(nil), *p); err != nil {
			return nil, err
		}
	}
	for _, k := range r.extraKeys() {
		buf.WriteByte(',')
		if err := writeMember(&buf, k, r.Extra[k], ""); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, raw json.RawMessage, value string) error {
	key, err := marshalText(name)
	if err != nil {
		return err
	}
	buf.Write(key)
	buf.WriteByte(':')
	if raw != nil {
		if !json.Valid(raw) {
			return fmt.Errorf("member %s: invalid JSON value", name)
		}
		buf.Write(raw)
		return nil
	}
	v, err := marshalText(value)
	if err != nil {
		return err
	}
	buf.Write(v)
	return nil
}

// marshalText encodes s as a JSON string, leaving <, > and & as they are.
func marshalText(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (r *AcquisitionRecord) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	*r = AcquisitionRecord{}
	ptrs := r.fieldPointers()
	for i, name := range Fields {
		raw, ok := members[name]
		if !ok {
			continue
		}
		v, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("member %s: %w", name, err)
		}
		*ptrs[i] = v
		delete(members, name)
	}

	for k, raw := range members {
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return fmt.Errorf("member %s: %w", k, err)
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage, len(members))
		}
		r.Extra[k] = compact.Bytes()
	}
	return nil
}

// scalarText takes strings as they are and numbers or booleans by their literal text.
func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("must be a string, number or boolean")
	default:
		return string(raw), nil
	}
}

func rawText(raw json.RawMessage) string {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
