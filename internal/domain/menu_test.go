package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBundle(t *testing.T) {
	latte := &MenuItem{MenuItemID: "menu-latte", Name: "Latte"}
	croissant := &MenuItem{MenuItemID: "menu-croissant", Name: "Croissant"}
	breakfast := &MenuItem{
		MenuItemID: "menu-breakfast",
		Name:       "Breakfast Set",
		IsBundle:   true,
		BundleComponents: []BundleComponent{
			{ProductID: "menu-latte", Quantity: 1},
			{ProductID: "menu-croissant", Quantity: 2},
		},
	}

	catalog := map[string]*MenuItem{
		"menu-latte":     latte,
		"menu-croissant": croissant,
		"menu-breakfast": breakfast,
	}
	lookup := func(id string) (*MenuItem, error) {
		return catalog[id], nil
	}

	t.Run("plain item passes", func(t *testing.T) {
		assert.NoError(t, ValidateBundle(latte, lookup))
	})

	t.Run("bundle of plain items passes", func(t *testing.T) {
		assert.NoError(t, ValidateBundle(breakfast, lookup))
	})

	t.Run("bundle of bundles rejected", func(t *testing.T) {
		mega := &MenuItem{
			MenuItemID: "menu-mega",
			IsBundle:   true,
			BundleComponents: []BundleComponent{
				{ProductID: "menu-breakfast", Quantity: 1},
			},
		}
		assert.ErrorIs(t, ValidateBundle(mega, lookup), ErrNestedBundle)
	})

	t.Run("missing component rejected", func(t *testing.T) {
		broken := &MenuItem{
			MenuItemID: "menu-broken",
			IsBundle:   true,
			BundleComponents: []BundleComponent{
				{ProductID: "menu-nope", Quantity: 1},
			},
		}
		assert.ErrorIs(t, ValidateBundle(broken, lookup), ErrMenuItemNotFound)
	})
}
