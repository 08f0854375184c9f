package lutstate

// Field names an observable property of the Model.
type Field int

const (
	FieldMonitors Field = iota
	FieldSelectedMonitor
	FieldSdrLutPath
	FieldHdrLutPath
	FieldLutHistory
	FieldToggleKey
	FieldIsActive
	FieldActiveText
)

var fieldNames = [...]string{
	FieldMonitors:        "Monitors",
	FieldSelectedMonitor: "SelectedMonitor",
	FieldSdrLutPath:      "SdrLutPath",
	FieldHdrLutPath:      "HdrLutPath",
	FieldLutHistory:      "LutHistory",
	FieldToggleKey:       "ToggleKey",
	FieldIsActive:        "IsActive",
	FieldActiveText:      "ActiveText",
}

func (f Field) String() string {
	if f >= 0 && int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return "Field(?)"
}

// Subscribe registers fn to be called, on the goroutine that mutates the
// Model, after each field change. The returned func unsubscribes.
func (m *Model) Subscribe(fn func(Field)) (cancel func()) {
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() { delete(m.subs, id) }
}

func (m *Model) notify(fields ...Field) {
	for _, f := range fields {
		for _, fn := range m.subs {
			fn(f)
		}
	}
}
