package weightedtree

import "time"

// SetData replaces the root datum. The next Update discards every wrapper and
// starts again with the first level expanded and deeper levels collapsed.
func (v *Viz[D]) SetData(data D) {
	v.cfg.Data = data
	v.dataDirty = true
	v.emit(Event[D]{Name: ChangeEvent(PropData), New: data})
}

// SetChildren replaces the children accessor.
func (v *Viz[D]) SetChildren(fn func(D) []D) {
	v.cfg.Children = fn
	v.refresh = true
	v.emit(Event[D]{Name: ChangeEvent(PropChildren)})
}

// SetValue replaces the value accessor.
func (v *Viz[D]) SetValue(fn func(D) float64) {
	v.cfg.Value = fn
	v.refresh = true
	v.emit(Event[D]{Name: ChangeEvent(PropValue)})
}

// SetLabel replaces the label accessor.
func (v *Viz[D]) SetLabel(fn func(D) string) {
	v.cfg.Label = fn
	v.refresh = true
	v.emit(Event[D]{Name: ChangeEvent(PropLabel)})
}

// SetKey replaces the key accessor. Existing wrappers cannot be matched under
// a new key, so the data is treated as new.
func (v *Viz[D]) SetKey(fn func(D) string) {
	v.cfg.Key = fn
	v.dataDirty = true
	v.emit(Event[D]{Name: ChangeEvent(PropKey)})
}

// SetWidth sets the container width.
func (v *Viz[D]) SetWidth(w float64) {
	setProp(v, PropWidth, &v.cfg.Width, w)
}

// SetHeight sets the container height.
func (v *Viz[D]) SetHeight(h float64) {
	setProp(v, PropHeight, &v.cfg.Height, h)
}

// SetMargin sets the plot margins.
func (v *Viz[D]) SetMargin(m Margin) {
	setProp(v, PropMargin, &v.cfg.Margin, m)
}

// SetDuration sets the transition length used by later passes.
func (v *Viz[D]) SetDuration(d time.Duration) {
	setProp(v, PropDuration, &v.cfg.Duration, d)
}

// SetBranchPadding sets the vertical spacing fraction, or Auto.
func (v *Viz[D]) SetBranchPadding(p float64) {
	setProp(v, PropBranchPadding, &v.cfg.BranchPadding, p)
}

// SetFixedSpan sets the horizontal distance between depths, or Auto.
func (v *Viz[D]) SetFixedSpan(span float64) {
	setProp(v, PropFixedSpan, &v.cfg.FixedSpan, span)
}

func setProp[D any, T comparable](v *Viz[D], prop string, field *T, value T) {
	old := *field
	if old == value {
		return
	}

	*field = value
	v.emit(Event[D]{Name: ChangeEvent(prop), Old: old, New: value})
}
