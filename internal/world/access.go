package world

// MapArraySnapshot returns a copy of the current map array, safe to
// retain and mutate independently of the world (used by world format
// savers and the backup pipeline).
func (w *World) MapArraySnapshot() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]byte, len(w.mapArray))
	copy(out, w.mapArray)
	return out
}

// Volume returns the total number of blocks in the world.
func (w *World) Volume() int {
	return int(w.SizeX) * int(w.SizeY) * int(w.SizeZ)
}

// Dimensions returns the world's size along each axis, used by the
// transport layer when it needs to stream a fresh map download without
// importing the full World type.
func (w *World) Dimensions() (sizeX, sizeY, sizeZ uint16) {
	return w.SizeX, w.SizeY, w.SizeZ
}
