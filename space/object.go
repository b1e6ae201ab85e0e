package space

// Object is the capability every entity addable to a Space must supply:
// admission/eviction hooks, current ownership, and an opaque user tag the
// Space stores but never interprets. Embed ObjectBase to satisfy the
// ownership and tag plumbing
type Object interface {
	// SpaceOwner returns the Space this object currently belongs to,
	// or nil
	SpaceOwner() *Space
	setOwner(*Space)

	// OnAdded is invoked after admission with the owning Space
	OnAdded(*Space)
	// OnRemoved is invoked after eviction with the former owner
	OnRemoved(*Space)

	Tag() any
	SetTag(any)
}

// ObjectBase provides the ownership and tag storage of Object. Types that
// embed it may override OnAdded/OnRemoved; ownership bookkeeping stays
// with the Space
type ObjectBase struct {
	owner *Space
	tag   any
}

func (o *ObjectBase) SpaceOwner() *Space { return o.owner }
func (o *ObjectBase) setOwner(s *Space)  { o.owner = s }
func (o *ObjectBase) Tag() any           { return o.tag }
func (o *ObjectBase) SetTag(tag any)     { o.tag = tag }
func (o *ObjectBase) OnAdded(s *Space)   {}
func (o *ObjectBase) OnRemoved(s *Space) {}
