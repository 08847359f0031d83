package cleaner

import (
	"github.com/akshay-rajan/adventureworks/internal/table"
)

// Kind identifies which cleaning pipeline applies to an incoming dataset.
// The set is closed: adding a dataset means adding a constant here and a
// case to both switches below, which the compiler then checks for coverage.
type Kind int

const (
	// KindUnknown routes to the explicit no-op: the dataset passes through
	// unchanged. Unrecognized identities are valid input, not an error.
	KindUnknown Kind = iota
	KindCustomers
	KindCustomerProfiles
	KindSales2015
	KindSales2016
	KindSales2017
	KindReturns
	KindProducts
)

func (k Kind) String() string {
	switch k {
	case KindCustomers:
		return "customers"
	case KindCustomerProfiles:
		return "customer_profiles"
	case KindSales2015:
		return "sales_2015"
	case KindSales2016:
		return "sales_2016"
	case KindSales2017:
		return "sales_2017"
	case KindReturns:
		return "returns"
	case KindProducts:
		return "products"
	default:
		return "unknown"
	}
}

// KindForName maps a source file base name to its dataset kind. Names not in
// the fixed mapping are KindUnknown.
func KindForName(name string) Kind {
	switch name {
	case "customers.csv":
		return KindCustomers
	case "customers_new.csv":
		return KindCustomerProfiles
	case "sales_2015.csv":
		return KindSales2015
	case "sales_2016.csv":
		return KindSales2016
	case "sales_2017.csv":
		return KindSales2017
	case "returns.csv":
		return KindReturns
	case "products.csv":
		return KindProducts
	default:
		return KindUnknown
	}
}

// Clean applies the pipeline for k to a clone of ds and returns the cleaned
// dataset. KindUnknown returns the input unchanged. On error the input is
// untouched and no partial result is returned.
//
// Clean is deterministic and free of side effects; concurrent calls on
// independent datasets need no synchronization.
func Clean(ds *table.Dataset, k Kind) (*table.Dataset, error) {
	p, ok := pipelineFor(k)
	if !ok {
		return ds, nil
	}
	out := ds.Clone()
	if err := p.run(out); err != nil {
		return nil, err
	}
	return out, nil
}

// pipelineFor resolves a kind to its pipeline. The three yearly sales kinds
// share one pipeline.
func pipelineFor(k Kind) (pipeline, bool) {
	switch k {
	case KindCustomers:
		return customersPipeline, true
	case KindCustomerProfiles:
		return customerProfilesPipeline, true
	case KindSales2015, KindSales2016, KindSales2017:
		return salesPipeline, true
	case KindReturns:
		return returnsPipeline, true
	case KindProducts:
		return productsPipeline, true
	default:
		return pipeline{}, false
	}
}
