package fakeshop

import (
	"fmt"

	"github.com/almirah-shop/storefront/internal/types"
)

// DemoAccount is a seeded login.
type DemoAccount struct {
	Username string
	Password string
	Role     types.Role
}

// Demo describes what Seed created.
type Demo struct {
	Accounts []DemoAccount
	Products []types.Product
}

func price(v float64) *float64 { return &v }

var demoProducts = []types.Product{
	{Name: "Indigo Block Print Kurta", Category: "kurta", Gender: types.GenderMen, Price: 1499, DiscountedPrice: price(1199), InStock: true, Sizes: []string{"S", "M", "L", "XL"}, Colors: []string{"indigo"}},
	{Name: "Linen Nehru Jacket", Category: "jacket", Gender: types.GenderMen, Price: 2499, InStock: true, Sizes: []string{"M", "L"}, Colors: []string{"beige", "olive"}},
	{Name: "Chanderi Silk Saree", Category: "saree", Gender: types.GenderWomen, Price: 4999, DiscountedPrice: price(3999), InStock: true, Colors: []string{"rani pink", "mustard"}},
	{Name: "Mulmul Anarkali Set", Category: "kurta", Gender: types.GenderWomen, Price: 2899, InStock: true, Sizes: []string{"XS", "S", "M", "L"}},
	{Name: "Handwoven Cotton Stole", Category: "accessories", Gender: types.GenderUnisex, Price: 799, DiscountedPrice: price(899), InStock: true},
	{Name: "Kolhapuri Sandals", Category: "footwear", Gender: types.GenderUnisex, Price: 1299, InStock: false, Sizes: []string{"7", "8", "9", "10"}},
	{Name: "Ikat Palazzo Pants", Category: "bottoms", Gender: types.GenderWomen, Price: 1099, DiscountedPrice: price(899), InStock: true, Sizes: []string{"S", "M", "L"}},
	{Name: "Khadi Shirt", Category: "shirt", Gender: types.GenderMen, Price: 1299, InStock: true, Sizes: []string{"M", "L", "XL"}, Colors: []string{"white", "sky"}},
}

// Seed loads demo accounts, products and reviews into an empty store.
func Seed(store *Store) (Demo, error) {
	var demo Demo
	specs := []AccountSpec{
		{Username: "admin", Email: "admin@almirah.shop", Password: "admin-pass", Role: types.RoleAdmin, Verified: true},
		{Username: "weaver", Email: "weaver@almirah.shop", Password: "weaver-pass", Role: types.RoleSeller, BusinessName: "Weaver's Loom", Verified: true, Approved: true},
		{Username: "asha", Email: "asha@example.com", Phone: "9876543210", Password: "asha-pass", Role: types.RoleCustomer, Verified: true},
	}
	var sellerID int64
	for _, spec := range specs {
		acct, err := store.CreateAccount(spec)
		if err != nil {
			return Demo{}, fmt.Errorf("failed to seed account %s: %w", spec.Username, err)
		}
		if spec.Role == types.RoleSeller {
			sellerID = acct.ID
		}
		demo.Accounts = append(demo.Accounts, DemoAccount{Username: spec.Username, Password: spec.Password, Role: spec.Role})
	}

	for i, p := range demoProducts {
		owner := int64(0)
		if i%2 == 0 {
			owner = sellerID
		}
		demo.Products = append(demo.Products, store.AddProduct(p, owner))
	}

	reviews := []types.Review{
		{ProductID: demo.Products[0].ID, Username: "asha", Rating: 5, Comment: "Soft fabric and even print."},
		{ProductID: demo.Products[0].ID, Username: "ravi", Rating: 4, Comment: "Runs a little large."},
		{ProductID: demo.Products[2].ID, Username: "meera", Rating: 5},
	}
	for _, r := range reviews {
		if err := store.AddReview(r); err != nil {
			return Demo{}, fmt.Errorf("failed to seed review: %w", err)
		}
	}
	return demo, nil
}
