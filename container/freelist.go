package container

// allocate pops a sector off the free list, growing the container by one
// sector via append if the list is currently empty.
//
// Known deviation (preserved, see spec's design notes): after popping the
// head, the new head's Previous field is not cleared here. It still points
// at the popped (now reused) sector until the caller overwrites that sector
// with a non-Empty payload, which every caller of allocate() always does
// immediately. Invariant P2 holds again as soon as that write lands.
func (e *Engine) allocate() (uint64, error) {
	if e.sb.FirstEmptySector == nil {
		if _, err := e.append(); err != nil {
			return 0, err
		}
	}

	head := *e.sb.FirstEmptySector
	v, err := e.readSector(head)
	if err != nil {
		return 0, err
	}
	empty, ok := v.(EmptySector)
	if !ok {
		return 0, &VariantMismatchError{SectorID: head, Expected: "Empty", Got: sectorTagName(v)}
	}

	if e.sb.LastEmptySector != nil && *e.sb.LastEmptySector == head {
		e.sb.FirstEmptySector = nil
		e.sb.LastEmptySector = nil
	} else {
		e.sb.FirstEmptySector = empty.Next
	}

	if err := e.writeSuperblock(); err != nil {
		return 0, err
	}
	return head, nil
}

// append writes a fresh Empty sector at the current end of the container
// and links it onto the tail of the free list.
func (e *Engine) append() (uint64, error) {
	newID := e.sb.SectorCount
	e.sb.SectorCount++

	var previous *uint64
	if e.sb.LastEmptySector != nil {
		previous = clone(*e.sb.LastEmptySector)
	}
	if err := e.writeSector(newID, EmptySector{Previous: previous, Next: nil}); err != nil {
		return 0, err
	}

	if e.sb.LastEmptySector != nil {
		oldTail := *e.sb.LastEmptySector
		v, err := e.readSector(oldTail)
		if err != nil {
			return 0, err
		}
		tail, ok := v.(EmptySector)
		if !ok {
			return 0, &VariantMismatchError{SectorID: oldTail, Expected: "Empty", Got: sectorTagName(v)}
		}
		tail.Next = clone(newID)
		if err := e.writeSector(oldTail, tail); err != nil {
			return 0, err
		}
	}

	if e.sb.FirstEmptySector == nil {
		e.sb.FirstEmptySector = clone(newID)
	}
	e.sb.LastEmptySector = clone(newID)

	if err := e.writeSuperblock(); err != nil {
		return 0, err
	}
	return newID, nil
}

// release returns a sector to the free list, inserting it at the head
// (LIFO), unless it is already Empty.
func (e *Engine) release(id uint64) error {
	v, err := e.readSector(id)
	if err != nil {
		return err
	}
	if _, ok := v.(EmptySector); ok {
		return nil
	}

	var next *uint64
	if e.sb.FirstEmptySector != nil {
		oldHead := *e.sb.FirstEmptySector
		hv, err := e.readSector(oldHead)
		if err != nil {
			return err
		}
		head, ok := hv.(EmptySector)
		if !ok {
			return &VariantMismatchError{SectorID: oldHead, Expected: "Empty", Got: sectorTagName(hv)}
		}
		head.Previous = clone(id)
		if err := e.writeSector(oldHead, head); err != nil {
			return err
		}
		next = clone(oldHead)
	}

	if err := e.writeSector(id, EmptySector{Previous: nil, Next: next}); err != nil {
		return err
	}

	e.sb.FirstEmptySector = clone(id)
	if e.sb.LastEmptySector == nil {
		e.sb.LastEmptySector = clone(id)
	}

	return e.writeSuperblock()
}

func clone(v uint64) *uint64 {
	return &v
}
