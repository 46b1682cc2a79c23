package treebuilder

import "github.com/gohubbub/hubbub/perr"

// runAdoptionAgency implements the adoption agency algorithm (HTML5
// §12.2.6.4.7), with its bookmark-bearing outer/inner loop, for a
// formatting end tag named subject. It runs at most 8 outer-loop
// iterations, each with at most 3 inner-loop iterations, per the
// algorithm's own loop bounds.
func (d *Driver) runAdoptionAgency(subject string) error {
	subjectType, ok := formattingElementTags[subject]
	if !ok {
		return d.anyOtherEndTag(subject)
	}

	for outer := 0; outer < 8; outer++ {
		afeIdx := d.afe.lastMatching(subjectType)
		if afeIdx < 0 {
			return d.anyOtherEndTag(subject)
		}
		formattingNode := d.afe[afeIdx].frame.node

		stackIdx := d.openElements.index(formattingNode)
		if stackIdx < 0 {
			d.parseError(perr.StrayEndTag, subject)
			d.afe.remove(afeIdx)
			return nil
		}
		if !elementInScope(d.openElements, subjectType) {
			d.parseError(perr.StrayEndTag, subject)
			return nil
		}
		if stackIdx != len(d.openElements)-1 {
			d.parseError(perr.MisnestedTag, subject)
		}

		furthestBlock := -1
		for i := stackIdx + 1; i < len(d.openElements); i++ {
			if d.openElements[i].namespace == "" && specialTypes[d.openElements[i].typ] {
				furthestBlock = i
				break
			}
		}

		if furthestBlock < 0 {
			if err := d.openElements.popUntilIndex(d.h, stackIdx); err != nil {
				return err
			}
			d.afe.remove(afeIdx)
			return nil
		}

		commonAncestor := d.openElements[stackIdx-1]
		bookmark := afeIdx

		node := d.openElements[furthestBlock]
		lastNode := node
		nodeIdx := furthestBlock

		for inner := 0; inner < 3; inner++ {
			nodeIdx--
			if nodeIdx <= stackIdx {
				break
			}
			node = d.openElements[nodeIdx]

			ai := d.afe.indexOfNode(node.node)
			if ai < 0 {
				d.removeStackFrame(nodeIdx)
				if err := d.h.UnrefNode(node.node); err != nil {
					return err
				}
				furthestBlock--
				nodeIdx++
				continue
			}
			clone, err := d.h.CloneNode(node.node, false)
			if err != nil {
				return err
			}
			// node.node is referenced by both the afe entry and the stack
			// frame being replaced here; the clone takes over both slots.
			if err := d.h.RefNode(clone); err != nil {
				return err
			}
			if err := d.h.RefNode(clone); err != nil {
				return err
			}
			if err := d.h.UnrefNode(node.node); err != nil {
				return err
			}
			if err := d.h.UnrefNode(node.node); err != nil {
				return err
			}
			newEntry := afeEntry{frame: frame{namespace: node.namespace, typ: node.typ, name: node.name, node: clone}, attrs: d.afe[ai].attrs}
			d.afe[ai] = newEntry
			d.openElements[nodeIdx] = frame{namespace: node.namespace, typ: node.typ, name: node.name, node: clone}
			node = d.openElements[nodeIdx]

			if lastNode.node == d.openElements[furthestBlock].node {
				bookmark = ai + 1
			}

			if err := d.reparentLastNode(lastNode.node, node.node); err != nil {
				return err
			}
			lastNode = node
		}

		ip, err := d.appropriatePlace(commonAncestor.node, true)
		if err != nil {
			return err
		}
		if ip.parent != nil {
			if err := d.reparentNodeTo(lastNode.node, ip); err != nil {
				return err
			}
		}

		clone, err := d.h.CloneNode(formattingNode, false)
		if err != nil {
			return err
		}
		if err := d.h.RefNode(clone); err != nil {
			return err
		}
		if err := d.h.ReparentChildren(d.openElements[furthestBlock].node, clone); err != nil {
			return err
		}
		if _, err := d.h.AppendChild(d.openElements[furthestBlock].node, clone); err != nil {
			return err
		}

		newFrame := frame{namespace: "", typ: subjectType, name: subject, node: clone}
		if bookmark >= 0 && bookmark <= len(d.afe) {
			d.afe.remove(afeIdx)
			if bookmark > afeIdx {
				bookmark--
			}
			d.afe.insertAt(bookmark, afeEntry{frame: newFrame, attrs: d.afe0Attrs(afeIdx, newFrame)})
		}

		if err := d.h.UnrefNode(formattingNode); err != nil {
			return err
		}
		d.removeStackFrame(stackIdx)
		d.insertStackFrameAfter(furthestBlock-1, newFrame)
		if err := d.h.RefNode(clone); err != nil {
			return err
		}
	}
	return nil
}

// removeStackFrame deletes the stack entry at index i without unref'ing
// (the caller has already transferred ownership via clone/reparent).
func (d *Driver) removeStackFrame(i int) {
	d.openElements = append(d.openElements[:i], d.openElements[i+1:]...)
}

func (d *Driver) insertStackFrameAfter(i int, f frame) {
	if i < -1 {
		i = -1
	}
	idx := i + 1
	d.openElements = append(d.openElements, frame{})
	copy(d.openElements[idx+1:], d.openElements[idx:])
	d.openElements[idx] = f
}

func (d *Driver) reparentLastNode(child, newParent Node) error {
	if oldParent, err := d.h.GetParent(child, false); err == nil && oldParent != nil {
		if err := d.h.RemoveChild(oldParent, child); err != nil {
			return err
		}
	}
	_, err := d.h.AppendChild(newParent, child)
	return err
}

func (d *Driver) reparentNodeTo(n Node, ip insertionPoint) error {
	if oldParent, err := d.h.GetParent(n, false); err == nil && oldParent != nil {
		if err := d.h.RemoveChild(oldParent, n); err != nil {
			return err
		}
	}
	_, err := d.insertAt(ip, n)
	return err
}

// afe0Attrs recovers the attribute snapshot for a formatting entry being
// replaced in place, so the re-inserted clone's afeEntry keeps the Noah's
// Ark comparison data intact.
func (d *Driver) afe0Attrs(oldIdx int, _ frame) []Attribute {
	if oldIdx < 0 || oldIdx >= len(d.afe) {
		return nil
	}
	return d.afe[oldIdx].attrs
}

// popUntilIndex pops frames down to (and including) index i, from the top.
func (s *elementStack) popUntilIndex(h Handler, i int) error {
	for len(*s) > i {
		if err := s.pop(h); err != nil {
			return err
		}
	}
	return nil
}
