package game

import (
	"context"
	"errors"
	"testing"

	"github.com/wscgames/scavbot/internal/rules"
)

type fakeMinter struct {
	tx   string
	err  error
	mint int
}

func (f *fakeMinter) MintCollectible(_ context.Context, _, _, _ string) (string, error) {
	f.mint++
	return f.tx, f.err
}

func TestCraftAllOrNothing(t *testing.T) {
	l := &Ledger{Rules: rules.Canonical()}
	p := testPlayer(l.Rules)
	p.Bunker = Pool{ScrapMetal: 10, RadWaste: 4}

	_, err := l.Craft(context.Background(), p, "rusty_blade", nil)
	var ie *InsufficientError
	if !errors.As(err, &ie) {
		t.Fatalf("Craft = %v, want InsufficientError", err)
	}
	if ie.Short[string(RadWaste)] != 1 {
		t.Errorf("shortages = %v, want radWaste:1", ie.Short)
	}
	if p.Bunker[ScrapMetal] != 10 || p.Bunker[RadWaste] != 4 {
		t.Errorf("failed craft mutated bunker: %v", p.Bunker)
	}
	if len(p.Inventory.Weapons) != 0 {
		t.Errorf("failed craft produced an item")
	}
}

func TestCraftSuccess(t *testing.T) {
	l := &Ledger{Rules: rules.Canonical()}
	p := testPlayer(l.Rules)
	p.Bunker = Pool{ScrapMetal: 10, RadWaste: 5}

	item, err := l.Craft(context.Background(), p, "rusty_blade", nil)
	if err != nil {
		t.Fatalf("Craft: %v", err)
	}
	if item.Name != "Rusty Blade" || item.AttackBonus != 5 {
		t.Errorf("crafted %+v", item)
	}
	if p.Bunker[ScrapMetal] != 0 || p.Bunker[RadWaste] != 0 {
		t.Errorf("bunker after craft: %v", p.Bunker)
	}
	if len(p.Inventory.Weapons) != 1 {
		t.Fatalf("inventory has %d weapons", len(p.Inventory.Weapons))
	}
}

func TestCraftUnknownRecipe(t *testing.T) {
	l := &Ledger{Rules: rules.Canonical()}
	p := testPlayer(l.Rules)
	if _, err := l.Craft(context.Background(), p, "nonsense", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("Craft(nonsense) = %v, want ErrValidation", err)
	}
}

func TestCraftLegendaryKeyItem(t *testing.T) {
	l := &Ledger{Rules: rules.Canonical()}
	rec, _ := RecipeByID("scorpion_stinger")

	t.Run("missing key blocks even with materials", func(t *testing.T) {
		p := testPlayer(l.Rules)
		p.Bunker = rec.Materials.Clone()
		p.Bunker[SCR] = rec.Fee
		_, err := l.Craft(context.Background(), p, rec.ID, nil)
		var ie *InsufficientError
		if !errors.As(err, &ie) {
			t.Fatalf("Craft = %v, want InsufficientError", err)
		}
		if _, ok := ie.Short[KeyItemName]; !ok {
			t.Errorf("shortages = %v, want the key item", ie.Short)
		}
		if p.Bunker[ScrapMetal] != rec.Materials[ScrapMetal] {
			t.Errorf("keyless craft debited materials: %v", p.Bunker)
		}
	})

	t.Run("key consumed, mint tx recorded", func(t *testing.T) {
		p := testPlayer(l.Rules)
		p.Bunker = rec.Materials.Clone()
		p.Bunker[SCR] = rec.Fee
		p.Inventory.Misc = []MiscItem{{Name: KeyItemName}}
		minter := &fakeMinter{tx: "0xmint"}

		item, err := l.Craft(context.Background(), p, rec.ID, minter)
		if err != nil {
			t.Fatalf("Craft: %v", err)
		}
		if item.MintTx != "0xmint" || minter.mint != 1 {
			t.Errorf("mint tx %q after %d mints", item.MintTx, minter.mint)
		}
		if p.HasMisc(KeyItemName) {
			t.Error("key item not consumed")
		}
	})

	t.Run("mint failure still commits the craft", func(t *testing.T) {
		p := testPlayer(l.Rules)
		p.Bunker = rec.Materials.Clone()
		p.Bunker[SCR] = rec.Fee
		p.Inventory.Misc = []MiscItem{{Name: KeyItemName}}
		minter := &fakeMinter{err: errors.New("chain down")}

		_, err := l.Craft(context.Background(), p, rec.ID, minter)
		var ese *ExternalServiceError
		if !errors.As(err, &ese) {
			t.Fatalf("Craft = %v, want ExternalServiceError", err)
		}
		if len(p.Inventory.Weapons) != 1 {
			t.Errorf("mint failure rolled back the craft")
		}
		if p.Inventory.Weapons[0].MintTx != "" {
			t.Errorf("failed mint left tx %q", p.Inventory.Weapons[0].MintTx)
		}
	})
}

func TestDiscountedCost(t *testing.T) {
	rec, _ := RecipeByID("scrap_plate") // 20 scrap, 8 rad, 4 slag, fee 2
	cost := discountedCost(rec, 0.5)
	if cost[ScrapMetal] != 10 || cost[RadWaste] != 4 || cost[SlagShards] != 2 {
		t.Errorf("half-discount materials = %v", cost)
	}
	if cost[SCR] != 1 {
		t.Errorf("half-discount fee = %g, want 1", cost[SCR])
	}
	// Odd quantities round up, never to free.
	rec2, _ := RecipeByID("tattered_clothes") // 5 scrap, 2 rad
	cost2 := discountedCost(rec2, 0.5)
	if cost2[ScrapMetal] != 3 || cost2[RadWaste] != 1 {
		t.Errorf("rounded materials = %v, want scrap:3 rad:1", cost2)
	}
}

func TestEquip(t *testing.T) {
	p := testPlayer(rules.Canonical())
	p.Inventory.Weapons = []Item{{Name: "Rusty Blade", AttackBonus: 5}}

	if err := p.EquipWeapon(1); !errors.Is(err, ErrValidation) {
		t.Errorf("EquipWeapon(1) = %v, want ErrValidation", err)
	}
	if err := p.EquipWeapon(0); err != nil {
		t.Fatalf("EquipWeapon(0): %v", err)
	}
	if p.Equipped.Weapon == nil || p.Equipped.Weapon.Name != "Rusty Blade" {
		t.Fatalf("equipped = %+v", p.Equipped.Weapon)
	}
	// The equipped slot is a copy, not an alias into the inventory.
	p.Inventory.Weapons[0].AttackBonus = 99
	if p.Equipped.Weapon.AttackBonus != 5 {
		t.Errorf("equipped weapon aliases inventory")
	}
}

func TestPurify(t *testing.T) {
	l := &Ledger{Rules: rules.Canonical()}
	p := testPlayer(l.Rules)
	p.Inventory.Cursed = []CursedItem{CursedLootTable[0]}
	p.Bunker[SCR] = 4

	if err := l.Purify(p, 0); !IsInsufficient(err) {
		t.Fatalf("underfunded Purify = %v, want InsufficientError", err)
	}
	p.Bunker[SCR] = 5
	if err := l.Purify(p, 0); err != nil {
		t.Fatalf("Purify: %v", err)
	}
	if !p.Inventory.Cursed[0].Purified {
		t.Error("item not purified")
	}
	if p.Bunker[SCR] != 0 {
		t.Errorf("bunker SCR = %g after purify", p.Bunker[SCR])
	}
	if err := l.Purify(p, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("double Purify = %v, want ErrValidation", err)
	}
}

func TestBuyConsumable(t *testing.T) {
	l := &Ledger{Rules: rules.Canonical()}
	p := testPlayer(l.Rules)
	p.Bunker[SCR] = 5

	if err := l.BuyConsumable(p, "scavJuice"); err != nil {
		t.Fatalf("BuyConsumable: %v", err)
	}
	if p.Inventory.Consumables["scavJuice"] != 1 || p.Bunker[SCR] != 0 {
		t.Errorf("after purchase: %v, SCR %g", p.Inventory.Consumables, p.Bunker[SCR])
	}
	if err := l.BuyConsumable(p, "scavJuice"); !IsInsufficient(err) {
		t.Errorf("broke purchase = %v, want InsufficientError", err)
	}
	if err := l.BuyConsumable(p, "mystery"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown item = %v, want ErrValidation", err)
	}
}

func TestBuyPack(t *testing.T) {
	l := &Ledger{Rules: rules.Canonical()}
	r := NewRoller(16)
	p := testPlayer(l.Rules)
	p.Bunker[SCR] = l.Rules.PackPrices["rare"]

	drop, err := l.BuyPack(p, r, "rare")
	if err != nil {
		t.Fatalf("BuyPack: %v", err)
	}
	if p.Bunker[SCR] != 0 {
		t.Errorf("bunker SCR = %g after pack", p.Bunker[SCR])
	}
	for k, v := range drop.Materials {
		if p.Bunker[k] < v {
			t.Errorf("pack contents not credited: %s %g", k, p.Bunker[k])
		}
	}
	if _, err := l.BuyPack(p, r, "rare"); !IsInsufficient(err) {
		t.Errorf("broke pack purchase = %v, want InsufficientError", err)
	}
}
