package cleaner

import (
	"fmt"

	"github.com/akshay-rajan/adventureworks/internal/table"
)

// pipeline is a named, ordered list of stages. The first failing stage
// aborts the run; the caller's dataset is never observed half-cleaned
// because Clean works on a clone.
type pipeline struct {
	name   string
	stages []stage
}

func (p pipeline) run(ds *table.Dataset) error {
	for _, s := range p.stages {
		if err := s(ds); err != nil {
			return fmt.Errorf("clean %s: %w", p.name, err)
		}
	}
	return nil
}

// customersPipeline cleans the customer master file.
var customersPipeline = pipeline{
	name: "customers",
	stages: []stage{
		renameColumn("LastNa", "LastName"),
		setConstant("EducationLevel", "College Degree"),
		replaceValues("MaritalStatus", map[string]string{"M": "Married", "S": "Single"}),
		replaceValues("Prefix", map[string]string{"MrR": "MR"}),
		mapString("FirstName", stripDigits),
		mapString("Occupation", stripPunctuation),
		mapString("EmailAddress", emailDomain),
		normalizeDateColumn("BirthDate"),
		normalizeNumericColumn("CustomerKey"),
		toBool("HomeOwner", "Y", "true"),
		dropMissingRows("CustomerKey"),
	},
}

// customerProfilesPipeline cleans the social-media profile file. The output
// schema is data-dependent: one boolean indicator column per distinct
// social-media value seen in this invocation's input, plus the customer key.
var customerProfilesPipeline = pipeline{
	name: "customer_profiles",
	stages: []stage{
		dropMissingRows("CustomerKey"),
		fillMissing("Social Media Accounts", "NoSocialMedia"),
		oneHotExpand("Social Media Accounts", "CustomerKey"),
	},
}

// salesPipeline cleans any of the yearly sales files; they share a layout
// except that some years misname the final quantity column.
var salesPipeline = pipeline{
	name: "sales",
	stages: []stage{
		renameLastColumn("OrderQuantity"),
		dropMissingRows("OrderQuantity"),
		normalizeNumericColumn("OrderQuantity"),
		normalizeNumericColumn("ProductKey"),
		normalizeNumericColumn("CustomerKey"),
		normalizeNumericColumn("TerritoryKey"),
		normalizeNumericColumn("OrderLineItem"),
		normalizeDateColumn("OrderDate"),
		normalizeDateColumn("StockDate"),
		deriveColumn("OrderYear", "OrderDate", func(v any) any { return yearOf(cellString(v)) }),
	},
}

// returnsPipeline cleans the product returns file.
var returnsPipeline = pipeline{
	name: "returns",
	stages: []stage{
		normalizeDateColumn("ReturnDate"),
		normalizeNumericColumn("TerritoryKey"),
		normalizeNumericColumn("ProductKey"),
		parseInt("ReturnQuantity"),
		filterRows("ReturnQuantity", func(v any) bool {
			n, _ := v.(int)
			return n >= 1
		}),
	},
}

// productsPipeline cleans the product master file. Numeric fields stay in
// digit-string form; the warehouse schema types them.
var productsPipeline = pipeline{
	name: "products",
	stages: []stage{
		dropMissingRows("ProductKey"),
		normalizeNumericColumn("ProductKey"),
		normalizeNumericColumn("ProductSubcategoryKey"),
		normalizeNumericColumn("ProductCost"),
		normalizeNumericColumn("ProductPrice"),
		fillMissing("ProductSKU", "Unknown"),
		fillMissing("ProductName", "Unknown"),
		fillMissing("ModelName", "Unknown"),
		fillMissing("ProductDescription", "No Description"),
		fillMissing("ProductColor", "NA"),
		fillMissing("ProductSize", "NA"),
		fillMissing("ProductStyle", "NA"),
		replaceValues("ProductSize", map[string]string{"0": "NA"}),
		replaceValues("ProductStyle", map[string]string{"0": "NA"}),
	},
}
