package msgpack

// SearchResult is the outcome of BinarySearch. When Found is false, Index is
// the position at which the value would be inserted to keep the order.
type SearchResult struct {
	Index int
	Found bool
}

// BinarySearch looks for v in an ascending array.
// With duplicates present it reports one of the matching positions.
func (a *Array[V, F]) BinarySearch(v V) SearchResult {
	n := a.Len()
	if n == 0 {
		return SearchResult{Index: 0}
	}
	b := a.buf.Bytes()
	h := a.Header()
	slot := slotSize[V, F]()
	at := func(i int) V {
		e, _ := a.format.Read(b, h.Offset(i, slot))
		return e
	}

	start, size := 0, n
	for size > 1 {
		half := size / 2
		mid := start + half
		if a.format.Compare(v, at(mid)) < 0 {
			size = half
		} else {
			start = mid
			size -= half
		}
	}

	switch c := a.format.Compare(v, at(start)); {
	case c == 0:
		return SearchResult{Index: start, Found: true}
	case c > 0:
		return SearchResult{Index: start + 1}
	}
	return SearchResult{Index: start}
}
