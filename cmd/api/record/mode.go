package record

// Mode tells a form submission whether it creates a record or overwrites the one it was opened for.
type Mode struct {
	key    string
	update bool
}

func Create() Mode {
	return Mode{}
}

func UpdateOf(key string) Mode {
	return Mode{key: key, update: true}
}

func (m Mode) IsUpdate() bool {
	return m.update
}

// Key is the acquisition number being edited; empty for Create.
func (m Mode) Key() string {
	return m.key
}

func (m Mode) String() string {
	if m.update {
		return "update of " + m.key
	}
	return "create"
}
