package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
)

// UseItem spends one unit of an item during a pvp/pve match.
//   - reset regenerates the board, no events.
//   - freeze freezes the opponent unless they are immune.
//   - bomb clears the 3x3 square around (row, col), refills, then cascades without combo.
func (s *Service) UseItem(ctx context.Context, id, itemName string, row, col int) (ItemResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return ItemResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.IsAI || !sess.versus() {
		return ItemResult{}, ErrItemsDisabled
	}
	now := s.now()
	s.expire(sess, now)
	if sess.over {
		return ItemResult{}, ErrGameOver
	}
	item, err := ParseItem(itemName)
	if err != nil {
		return ItemResult{}, err
	}
	center := board.Pos{R: row, C: col}
	if item == ItemBomb && !center.In() {
		return ItemResult{}, ErrOutOfBounds
	}

	ok, err := s.gw.AdjustAsset(ctx, sess.PlayerID, item.Asset(), -1)
	if err != nil {
		return ItemResult{}, fmt.Errorf("debit %s: %w", item, err)
	}
	if !ok {
		return ItemResult{}, ErrInsufficient
	}

	pv := sess.peer()
	events := []Event{}
	switch item {
	case ItemReset:
		sess.board = board.Generate(sess.rng, sess.Level.Specials())
	case ItemFreeze:
		s.attack(pv.opponentID, now)
	case ItemBomb:
		st := &sess.board
		cleared := board.ClearArea(st, center)
		events = append(events, Event{Type: EventEliminate, Coords: pairs(cleared)})
		board.ResolveElimination(st, board.Set{}, sess.Level.Quota(), sess.rng)
		events = append(events, refillEvent(st))
		s.cascade(sess, &events, false)
	}
	s.deliver(pv.opponentID, events)

	log.Debug().Str("session", sess.ID).Str("item", string(item)).Msg("item used")
	return ItemResult{
		Msg:      "Used " + string(item),
		NewMap:   sess.board.Grid,
		NewBombs: bombList(sess.board.Bombs),
		Events:   events,
		Score:    sess.score,
	}, nil
}

// price is the shop cost of an item in coins.
func (s *Service) price(it Item) int {
	switch it {
	case ItemBomb:
		return s.cfg.Items.Bomb
	case ItemReset:
		return s.cfg.Items.Reset
	default:
		return s.cfg.Items.Freeze
	}
}

// BuyItem exchanges coins for one unit of an item. If the item cannot be
// credited the coins are refunded and ErrDelivery is returned.
func (s *Service) BuyItem(ctx context.Context, playerID int64, itemName string) error {
	item, err := ParseItem(itemName)
	if err != nil {
		return err
	}
	cost := s.price(item)

	ok, err := s.gw.AdjustAsset(ctx, playerID, AssetCoins, -cost)
	if err != nil {
		return fmt.Errorf("debit coins: %w", err)
	}
	if !ok {
		return ErrInsufficient
	}

	ok, err = s.gw.AdjustAsset(ctx, playerID, item.Asset(), 1)
	if err == nil && ok {
		return nil
	}
	if _, rerr := s.gw.AdjustAsset(ctx, playerID, AssetCoins, cost); rerr != nil {
		log.Error().Err(rerr).Int64("player", playerID).Int("coins", cost).Msg("refund failed")
	}
	log.Warn().Err(err).Int64("player", playerID).Str("item", string(item)).Msg("item delivery failed, coins refunded")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return ErrDelivery
}
