package history

// View is an immutable copy of a Buffer's contents taken at one tick. The
// presenter receives a View instead of the Buffer itself, so chart rendering
// can never race with or mutate the rolling series.
type View struct {
	Labels []string
	Series map[string][]float64
}

// View snapshots the buffer's current contents. The copy reflects the
// buffer exactly at call time; it is never cached between ticks.
func (b *Buffer) View() View {
	v := View{
		Labels: b.Labels(),
		Series: make(map[string][]float64, len(b.order)),
	}
	for _, name := range b.order {
		if vals := b.Values(name); vals != nil {
			v.Series[name] = vals
		}
	}
	return v
}

// Values returns the named series from the view, oldest first.
func (v View) Values(name string) []float64 {
	return v.Series[name]
}

// Last returns the most recent value of the named series, or 0 when the
// series is empty.
func (v View) Last(name string) float64 {
	vals := v.Series[name]
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}
