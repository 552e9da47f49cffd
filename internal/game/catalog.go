package game

import (
	"context"
	"math"
)

// Rarity tiers for crafted gear.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Slot distinguishes weapon from armor recipes.
type Slot string

const (
	SlotWeapon Slot = "weapon"
	SlotArmor  Slot = "armor"
)

// Recipe describes one craftable item. Legendary recipes additionally
// require (and consume) the named key item and carry a special bonus.
type Recipe struct {
	ID          string
	Slot        Slot
	Rarity      Rarity
	Materials   Pool    // required quantities, bunker only
	Fee         float64 // SCR fee, bunker only
	RequiresKey bool
	Output      Item
}

// Recipes is the static crafting catalog, cheapest first.
var Recipes = []Recipe{
	{
		ID: "tattered_clothes", Slot: SlotArmor, Rarity: RarityCommon,
		Materials: Pool{ScrapMetal: 5, RadWaste: 2},
		Output:    Item{Name: "Tattered Clothes", ArmorBonus: 1, Rarity: RarityCommon},
	},
	{
		ID: "rusty_blade", Slot: SlotWeapon, Rarity: RarityCommon,
		Materials: Pool{ScrapMetal: 10, RadWaste: 5},
		Output:    Item{Name: "Rusty Blade", AttackBonus: 5, Rarity: RarityCommon},
	},
	{
		ID: "scrap_plate", Slot: SlotArmor, Rarity: RarityRare,
		Materials: Pool{ScrapMetal: 20, RadWaste: 8, SlagShards: 4}, Fee: 2,
		Output: Item{Name: "Scrap Plate", ArmorBonus: 3, Rarity: RarityRare},
	},
	{
		ID: "glow_edge", Slot: SlotWeapon, Rarity: RarityEpic,
		Materials: Pool{ScrapMetal: 25, SlagShards: 10, GlowDust: 3}, Fee: 5,
		Output: Item{Name: "Glow Edge", AttackBonus: 10, Rarity: RarityEpic},
	},
	{
		ID: "scorpion_carapace", Slot: SlotArmor, Rarity: RarityLegendary,
		Materials: Pool{ScrapMetal: 40, RadWaste: 15, SlagShards: 12, GlowDust: 6}, Fee: 15,
		RequiresKey: true,
		Output: Item{Name: "Scorpion Carapace", ArmorBonus: 6, Rarity: RarityLegendary,
			Special: &SpecialBonus{Kind: BonusResist, Value: 0.10}},
	},
	{
		ID: "scorpion_stinger", Slot: SlotWeapon, Rarity: RarityLegendary,
		Materials: Pool{ScrapMetal: 35, SlagShards: 15, GlowDust: 8}, Fee: 20,
		RequiresKey: true,
		Output: Item{Name: "Scorpion Stinger", AttackBonus: 18, Rarity: RarityLegendary,
			Special: &SpecialBonus{Kind: BonusCrit, Value: 0.5}},
	},
	{
		ID: "kings_aegis", Slot: SlotArmor, Rarity: RarityLegendary,
		Materials: Pool{ScrapMetal: 50, RadWaste: 20, GlowDust: 10}, Fee: 25,
		RequiresKey: true,
		Output: Item{Name: "King's Aegis", ArmorBonus: 5, Rarity: RarityLegendary,
			Special: &SpecialBonus{Kind: BonusMaxHP, Value: 25}},
	},
}

// RecipeByID looks up a recipe in the catalog.
func RecipeByID(id string) (Recipe, bool) {
	for _, r := range Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// Minter is the external collectible-mint collaborator. Best effort: a
// failure never rolls back the craft.
type Minter interface {
	MintCollectible(ctx context.Context, owner, name, rarity string) (string, error)
}

// Craft validates the bunker holds every required quantity plus the fee and,
// for legendary recipes, that the key item is owned. On success all costs are
// debited, the key item consumed, and the item appended to the inventory.
// Minting is attempted for legendary output when a minter is supplied; a mint
// failure is returned alongside the already-crafted item via
// ExternalServiceError, with the craft itself committed.
func (l *Ledger) Craft(ctx context.Context, p *Player, recipeID string, minter Minter) (Item, error) {
	rec, ok := RecipeByID(recipeID)
	if !ok {
		return Item{}, ErrValidation
	}

	cost := discountedCost(rec, p.MaterialDiscount())
	if rec.RequiresKey && !p.HasMisc(KeyItemName) {
		return Item{}, &InsufficientError{Short: map[string]float64{KeyItemName: 1}}
	}
	if err := l.DebitMaterials(p.Bunker, cost); err != nil {
		return Item{}, err
	}
	if rec.RequiresKey {
		p.RemoveMisc(KeyItemName)
	}

	item := rec.Output
	var mintErr error
	if minter != nil && rec.Rarity == RarityLegendary {
		tx, err := minter.MintCollectible(ctx, p.WalletAddr, item.Name, string(rec.Rarity))
		if err != nil {
			mintErr = &ExternalServiceError{Op: "mint", Err: err}
		} else {
			item.MintTx = tx
		}
	}

	switch rec.Slot {
	case SlotWeapon:
		p.Inventory.Weapons = append(p.Inventory.Weapons, item)
	case SlotArmor:
		p.Inventory.Armor = append(p.Inventory.Armor, item)
	}
	return item, mintErr
}

// discountedCost applies the material discount to every kind and the fee,
// rounding material quantities up so a discount never makes a cost free.
func discountedCost(rec Recipe, discount float64) Pool {
	cost := Pool{}
	for k, v := range rec.Materials {
		cost[k] = math.Ceil(v * (1 - discount))
	}
	if rec.Fee > 0 {
		cost[SCR] = rec.Fee * (1 - discount)
	}
	return cost
}

// EquipWeapon copies the indexed inventory weapon into the equipped slot,
// replacing any previous weapon.
func (p *Player) EquipWeapon(i int) error {
	if i < 0 || i >= len(p.Inventory.Weapons) {
		return ErrValidation
	}
	item := p.Inventory.Weapons[i]
	p.Equipped.Weapon = &item
	return nil
}

// EquipArmor copies the indexed inventory armor into the equipped slot.
func (p *Player) EquipArmor(i int) error {
	if i < 0 || i >= len(p.Inventory.Armor) {
		return ErrValidation
	}
	item := p.Inventory.Armor[i]
	p.Equipped.Armor = &item
	return nil
}

// Purify lifts the debuff from a cursed item for a bunker SCR fee.
func (l *Ledger) Purify(p *Player, index int) error {
	if index < 0 || index >= len(p.Inventory.Cursed) {
		return ErrValidation
	}
	if p.Inventory.Cursed[index].Purified {
		return ErrValidation
	}
	if err := l.DebitMaterials(p.Bunker, Pool{SCR: l.Rules.PurifyCost}); err != nil {
		return err
	}
	p.Inventory.Cursed[index].Purified = true
	return nil
}

// BuyConsumable debits the bunker price for a store item and increments its
// inventory count.
func (l *Ledger) BuyConsumable(p *Player, name string) error {
	price, ok := l.Rules.StorePrices[name]
	if !ok {
		return ErrValidation
	}
	if err := l.DebitMaterials(p.Bunker, Pool{SCR: price}); err != nil {
		return err
	}
	p.Inventory.Consumables[name]++
	return nil
}

// BuyPack debits the pack price and rolls its contents into the bunker.
func (l *Ledger) BuyPack(p *Player, r *Roller, tier string) (MaterialDrop, error) {
	price, ok := l.Rules.PackPrices[tier]
	if !ok {
		return MaterialDrop{}, ErrValidation
	}
	if err := l.DebitMaterials(p.Bunker, Pool{SCR: price}); err != nil {
		return MaterialDrop{}, err
	}
	drop := RollMaterialPack(r, tier)
	l.CreditMaterials(p.Bunker, drop.Materials)
	if drop.KeyItem {
		p.Inventory.Misc = append(p.Inventory.Misc, MiscItem{Name: KeyItemName, Description: "An epic trophy from the " + BossName + "."})
	}
	return drop, nil
}
