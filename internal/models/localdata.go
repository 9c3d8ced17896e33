package models

// LocalData is the local store's entire state: one serialized aggregate,
// read and written whole on every mutation. Date fields travel as RFC 3339
// strings on the wire (encoding/json default for time.Time).
type LocalData struct {
	Contacts     []Contact     `json:"contacts"`
	Interactions []Interaction `json:"interactions"`
	Reminders    []Reminder    `json:"reminders"`
}

// Empty reports whether the blob holds no data at all.
func (d *LocalData) Empty() bool {
	return len(d.Contacts) == 0 && len(d.Interactions) == 0 && len(d.Reminders) == 0
}
