package gallery

import "time"

// Image is an entry of the local gallery view, mirroring a business_images
// row.
type Image struct {
	ID         string
	BusinessID string
	Path       string
	CreatedAt  time.Time
}

// view is the in-memory mirror of the record store's rows for the current
// business. It is only ever touched while the synchronizer's lock is held.
type view struct {
	entries []Image
}

func (v *view) replace(entries []Image) {
	v.entries = append([]Image(nil), entries...)
}

func (v *view) clear() {
	v.entries = nil
}

func (v *view) append(img Image) {
	v.entries = append(v.entries, img)
}

func (v *view) snapshot() []Image {
	return append([]Image(nil), v.entries...)
}

func (v *view) size() int {
	return len(v.entries)
}

// removeTransition is the optimistic removal of one image: Apply drops it
// from the view before any remote call, Compensate restores it if a remote
// step fails. Reinsertion appends at the tail; the position relative to
// other in-flight mutations is unspecified.
type removeTransition struct {
	image   Image
	applied bool
}

// Apply drops the image from the view. Reports whether it was present.
func (t *removeTransition) Apply(v *view) bool {
	for i, e := range v.entries {
		if e.ID == t.image.ID {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			t.applied = true
			return true
		}
	}
	return false
}

// Compensate restores a previously applied removal.
func (t *removeTransition) Compensate(v *view) {
	if !t.applied {
		return
	}
	v.append(t.image)
	t.applied = false
}
