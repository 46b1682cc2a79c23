package treebuilder

import "github.com/gohubbub/hubbub/elementtype"

// frame is one entry of the stack of open elements (HTML5 §12.2.4.2): a
// namespace, the resolved element type, and the opaque handler node it
// wraps. Since Node is opaque to the driver, the frame carries the
// namespace, tag type and literal name alongside it rather than reading
// them back off a concrete node.
type frame struct {
	namespace string
	typ       elementtype.Type
	name      string
	node      Node
}

// elementStack is the stack of open elements. The bottom frame is always
// the html element (or the fragment context element, in the fragment
// parsing case).
type elementStack []frame

func (s *elementStack) push(f frame) { *s = append(*s, f) }

// pop pops the stack, unref'ing the popped node. It panics if s is empty;
// calling it on an empty stack is a programmer error, not a runtime
// condition to recover from.
func (s *elementStack) pop(h Handler) error {
	i := len(*s) - 1
	f := (*s)[i]
	*s = (*s)[:i]
	return h.UnrefNode(f.node)
}

func (s *elementStack) top() *frame {
	if i := len(*s); i > 0 {
		return &(*s)[i-1]
	}
	return nil
}

// index returns the index of the top-most frame wrapping n, or -1.
func (s *elementStack) index(n Node) int {
	for i := len(*s) - 1; i >= 0; i-- {
		if (*s)[i].node == n {
			return i
		}
	}
	return -1
}

func (s *elementStack) contains(t elementtype.Type) bool {
	for _, f := range *s {
		if f.typ == t && f.namespace == "" {
			return true
		}
	}
	return false
}

// popUntil pops frames until (and including) one whose type is in types,
// within the HTML namespace, unref'ing each as it goes. It is a no-op if no
// such frame exists.
func (s *elementStack) popUntil(h Handler, types ...elementtype.Type) error {
	want := make(map[elementtype.Type]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	found := false
	for _, f := range *s {
		if f.namespace == "" && want[f.typ] {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	for len(*s) > 0 {
		f := (*s)[len(*s)-1]
		if err := s.pop(h); err != nil {
			return err
		}
		if f.namespace == "" && want[f.typ] {
			return nil
		}
	}
	return nil
}

// insertionModeStack is the stack of template insertion modes (HTML5
// §12.2.4.2). The "original insertion mode" saved by the text insertion
// mode is the plain Driver.originalMode field, not this stack.
type insertionModeStack []mode

func (s *insertionModeStack) push(m mode) { *s = append(*s, m) }

func (s *insertionModeStack) pop() mode {
	i := len(*s) - 1
	m := (*s)[i]
	*s = (*s)[:i]
	return m
}

// afeEntry is one entry of the list of active formatting elements: either a
// formatting element reference or a marker (HTML5 §12.2.4.3).
type afeEntry struct {
	marker bool
	frame  frame
	attrs  []Attribute // snapshot at insertion time, for the Noah's Ark clause
}

// afeList is the list of active formatting elements (HTML5 §12.2.4.3).
type afeList []afeEntry

// pushMarker inserts a scope marker, used on entering applet/object/
// marquee/template/td/th/caption, per HTML5 §12.2.4.3.
func (l *afeList) pushMarker() {
	*l = append(*l, afeEntry{marker: true})
}

// push appends a formatting element entry, first applying the Noah's Ark
// clause: if three entries with the same (name, namespace, attribute set)
// already exist since the last marker, the oldest is removed.
func (l *afeList) push(f frame, attrs []Attribute) {
	matches := 0
	oldest := -1
	for i := len(*l) - 1; i >= 0; i-- {
		e := (*l)[i]
		if e.marker {
			break
		}
		if e.frame.name == f.name && e.frame.namespace == f.namespace && sameAttrs(e.attrs, attrs) {
			matches++
			oldest = i
		}
	}
	if matches >= 3 && oldest >= 0 {
		*l = append((*l)[:oldest], (*l)[oldest+1:]...)
	}
	*l = append(*l, afeEntry{frame: f, attrs: attrs})
}

func sameAttrs(a, b []Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	idx := make(map[string]string, len(a))
	for _, at := range a {
		idx[at.Namespace+"|"+at.Name] = at.Value
	}
	for _, bt := range b {
		v, ok := idx[bt.Namespace+"|"+bt.Name]
		if !ok || v != bt.Value {
			return false
		}
	}
	return true
}

// clearToMarker removes entries back to (and including) the last marker, or
// to the start of the list if there is none, unref'ing each popped node.
func (l *afeList) clearToMarker(h Handler) error {
	for len(*l) > 0 {
		i := len(*l) - 1
		e := (*l)[i]
		*l = (*l)[:i]
		if e.marker {
			return nil
		}
		if err := h.UnrefNode(e.frame.node); err != nil {
			return err
		}
	}
	return nil
}

// indexOfNode finds the top-most afeList entry wrapping n.
func (l *afeList) indexOfNode(n Node) int {
	for i := len(*l) - 1; i >= 0; i-- {
		if !(*l)[i].marker && (*l)[i].frame.node == n {
			return i
		}
	}
	return -1
}

// lastMatching returns the index of the most recent entry with the
// given type in the HTML namespace, stopping at the first marker (used by
// "look for the last matching entry in the list of active formatting
// elements" in the adoption agency algorithm).
func (l *afeList) lastMatching(t elementtype.Type) int {
	for i := len(*l) - 1; i >= 0; i-- {
		e := (*l)[i]
		if e.marker {
			return -1
		}
		if e.frame.namespace == "" && e.frame.typ == t {
			return i
		}
	}
	return -1
}

// remove deletes the entry at index i.
func (l *afeList) remove(i int) {
	*l = append((*l)[:i], (*l)[i+1:]...)
}

// insertAt splices an entry at index i.
func (l *afeList) insertAt(i int, e afeEntry) {
	*l = append(*l, afeEntry{})
	copy((*l)[i+1:], (*l)[i:])
	(*l)[i] = e
}
