package keyspace

// Key is a handle on one name in the Keyspace. It stays valid while the
// caller keeps exclusive access to the Keyspace.
type Key struct {
	ks   *Keyspace
	name string
	node *node
}

// Name returns the key name.
func (k *Key) Name() string {
	return k.name
}

// Type reports whether the key currently exists.
func (k *Key) Type() KeyType {
	if k.node == nil {
		return KeyTypeEmpty
	}
	return KeyTypeString
}

// DMA returns the live value region. Writes through it change the stored
// value. The region may move on Truncate, so it must be fetched again after
// every Truncate call.
func (k *Key) DMA() []byte {
	if k.node == nil {
		return nil
	}
	return k.node.value
}

// Truncate resizes the value to exactly n bytes, creating the key if it is
// empty. Existing bytes up to n are kept and new bytes are zero.
func (k *Key) Truncate(n int) error {
	if err := k.ks.checkSize(n); err != nil {
		return err
	}
	if k.node == nil {
		k.node = k.ks.sl.put(k.name, make([]byte, n))
		return nil
	}

	v := k.node.value
	switch {
	case n > cap(v):
		grown := make([]byte, n)
		copy(grown, v)
		k.node.value = grown
	case n > len(v):
		v = v[:n]
		clear(v[len(k.node.value):])
		k.node.value = v
	case n < cap(v)/2:
		// release memory once a value has shrunk a lot
		k.node.value = append(make([]byte, 0, n), v[:n]...)
	default:
		k.node.value = v[:n]
	}
	return nil
}

// Delete removes the key.
func (k *Key) Delete() bool {
	if k.node == nil {
		return false
	}
	k.node = nil
	return k.ks.sl.remove(k.name)
}
