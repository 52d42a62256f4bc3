package player

import (
	"fmt"

	"github.com/obsidian-net/classicd/internal/block"
	"github.com/obsidian-net/classicd/internal/world"
)

// checkBlockPlacement enforces the two op-bypassable gates ahead of an
// actual placement: the disabled-block list, and (for liquids) the
// server-wide liquid-placement switch. An operator is warned but still
// allowed through; a non-operator is rejected with a ClientError.
func (p *Player) checkBlockPlacement(b *block.Block) error {
	isOp := p.IsOperator()

	if p.policy.IsBlockDisabled(b.ID) {
		if isOp {
			return p.SendMessage(fmt.Sprintf("&eWarning: %s Is Disabled For Non-Operators", b.Name))
		}
		return &world.ClientError{Reason: fmt.Sprintf("%s Is Disabled", b.Name)}
	}

	if b.IsLiquid && !p.policy.AllowLiquidPlacement() {
		if isOp {
			return p.SendMessage("&eWarning: Liquid Placement Is Disabled For Non-Operators")
		}
		return &world.ClientError{Reason: "Liquid Placement Is Disabled"}
	}

	return nil
}

// HandleBlockUpdate processes one inbound UpdateBlock packet: mode
// Destroy always writes air (id 0); mode Create resolves the requested
// block through the catalog and runs its placement policy. A
// ClientError from either the placement gate or the policy itself is
// reverted by writing the world's current block id back to this
// player's own connection (not broadcast) along with a chat explanation,
// mirroring the client's optimistic local placement being undone.
func (p *Player) HandleBlockUpdate(x, y, z int16, mode uint8, requestedBlockID uint8) error {
	w := p.World()
	if w == nil {
		return nil
	}

	var placeErr error
	if mode == 0 { // destroy
		placeErr = w.SetBlock(x, y, z, 0, p)
	} else {
		b, ok := p.catalog.ByID(requestedBlockID)
		if !ok {
			placeErr = &world.ClientError{Reason: "Unknown Block Type"}
		} else if gate := p.checkBlockPlacement(b); gate != nil {
			placeErr = gate
		} else {
			placeErr = b.Place(p, w, x, y, z)
		}
	}

	if placeErr == nil {
		return nil
	}

	clientErr, ok := placeErr.(*world.ClientError)
	if !ok {
		return placeErr
	}

	current, err := w.GetBlock(x, y, z)
	if err != nil {
		current = 0
	}
	if err := p.conn.SendSetBlock(x, y, z, current); err != nil {
		return err
	}
	return p.SendMessage("&c" + clientErr.Reason)
}
