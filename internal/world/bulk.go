package world

import (
	"runtime"
	"time"

	"github.com/obsidian-net/classicd/internal/block"
)

// Coord is a block coordinate used as a map key for bulk updates.
type Coord struct{ X, Y, Z int16 }

// bulkUpdateExtensionName/Version is the CPE extension gating which
// recipients get BulkBlockUpdate packets instead of individual SetBlock.
const bulkUpdateExtensionName = "BulkBlockUpdate"
const bulkUpdateExtensionVersion = 1

// bulkChunkSize matches the wire format's fixed 256-entry packet.
const bulkChunkSize = 256

// BulkBlockUpdate applies every (coord -> blockID) pair atomically: if
// any coordinate is out of range, the whole batch is rejected and the
// map array is left unchanged. sendPacket controls whether the change is
// broadcast; actor is forwarded to the same read-only/op check SetBlock
// uses, applied once for the whole batch.
func (w *World) BulkBlockUpdate(updates map[Coord]uint8, actor block.PlaceActor, sendPacket bool) error {
	w.mu.Lock()

	for c := range updates {
		if !w.inRange(c.X, c.Y, c.Z) {
			w.mu.Unlock()
			return &BlockError{X: c.X, Y: c.Y, Z: c.Z, SizeX: w.SizeX, SizeY: w.SizeY, SizeZ: w.SizeZ}
		}
	}
	if actor != nil && !w.CanEdit && !actor.IsOperator() {
		w.mu.Unlock()
		return &ClientError{Reason: "You Do Not Have Permission To Modify This Block"}
	}

	indices := make(map[int32]uint8, len(updates))
	for c, id := range updates {
		idx := int32(index(c.X, c.Y, c.Z, w.SizeX, w.SizeZ))
		w.mapArray[idx] = id
		indices[idx] = id
	}
	w.ModifiedAt = time.Now()
	players := w.players
	reloadThreshold := w.ReloadThreshold
	async := w.AsynchronousBlockUpdates
	sizeX, sizeZ := w.SizeX, w.SizeZ
	w.mu.Unlock()

	if !sendPacket || players == nil {
		return nil
	}

	recipients := players.Recipients()
	if reloadThreshold > 0 && len(indices) > reloadThreshold {
		for _, r := range recipients {
			_ = r.SendMapReload()
		}
		return nil
	}

	var supporters, others []Recipient
	for _, r := range recipients {
		if r.SupportsExtension(bulkUpdateExtensionName, bulkUpdateExtensionVersion) {
			supporters = append(supporters, r)
		} else {
			others = append(others, r)
		}
	}

	if len(supporters) > 0 {
		sendBulkChunks(supporters, indices, async)
	}
	if len(others) > 0 {
		sendIndividual(others, indices, sizeX, sizeZ)
	}
	return nil
}

func sendBulkChunks(recipients []Recipient, indices map[int32]uint8, yieldBetweenChunks bool) {
	idxSlice := make([]int32, 0, len(indices))
	for idx := range indices {
		idxSlice = append(idxSlice, idx)
	}

	for start := 0; start < len(idxSlice); start += bulkChunkSize {
		end := start + bulkChunkSize
		if end > len(idxSlice) {
			end = len(idxSlice)
		}
		chunk := idxSlice[start:end]

		chunkIndices := make([]int32, len(chunk))
		chunkIDs := make([]uint8, len(chunk))
		for i, idx := range chunk {
			chunkIndices[i] = idx
			chunkIDs[i] = indices[idx]
		}

		for _, r := range recipients {
			_ = r.SendBulkBlockUpdate(chunkIndices, chunkIDs)
		}

		if yieldBetweenChunks && end < len(idxSlice) {
			runtime.Gosched()
		}
	}
}

func sendIndividual(recipients []Recipient, indices map[int32]uint8, sizeX, sizeZ uint16) {
	for idx, id := range indices {
		x, y, z := unindex(idx, sizeX, sizeZ)
		for _, r := range recipients {
			_ = r.SendSetBlock(x, y, z, id)
		}
	}
}

// unindex inverts index(): i = x + sizeX*(z + sizeZ*y).
func unindex(i int32, sizeX, sizeZ uint16) (x, y, z int16) {
	rem := int(i)
	x = int16(rem % int(sizeX))
	rem /= int(sizeX)
	z = int16(rem % int(sizeZ))
	rem /= int(sizeZ)
	y = int16(rem)
	return
}
