package world

// GenerateSpawnCoords picks a surface spawn point if none is stored yet,
// or unconditionally when reset is true. It scans downward from the top
// of the world at the horizontal center to find the first non-air block,
// then places the spawn two blocks above it.
func (w *World) GenerateSpawnCoords(reset bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !reset && w.spawnSet {
		return
	}

	centerX := int16(w.SizeX / 2)
	centerZ := int16(w.SizeZ / 2)

	surfaceY := int16(0)
	for y := int16(w.SizeY) - 1; y >= 0; y-- {
		if w.mapArray[index(centerX, y, centerZ, w.SizeX, w.SizeZ)] != airBlockID {
			surfaceY = y
			break
		}
	}

	w.SpawnX = int32(centerX)*32 + 16
	w.SpawnY = int32(surfaceY+2)*32 + 51
	w.SpawnZ = int32(centerZ)*32 + 16
	w.SpawnYaw = 0
	w.SpawnPitch = 0
	w.spawnSet = true
}

// airBlockID mirrors block.Air's id (0) without importing the block
// package here purely for a constant; spawn scanning only needs to know
// what "empty" looks like in the byte array.
const airBlockID uint8 = 0

// SetStoredSpawn records a spawn point loaded from a world file, marking
// it as already set so GenerateSpawnCoords(false) leaves it alone.
func (w *World) SetStoredSpawn(x, y, z int32, yaw, pitch uint8) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.SpawnX, w.SpawnY, w.SpawnZ = x, y, z
	w.SpawnYaw, w.SpawnPitch = yaw, pitch
	w.spawnSet = true
}

// Spawn returns the world's current spawn point.
func (w *World) Spawn() (x, y, z int32, yaw, pitch uint8) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.SpawnX, w.SpawnY, w.SpawnZ, w.SpawnYaw, w.SpawnPitch
}
