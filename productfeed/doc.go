// Package productfeed renders product catalogs as JSON, CSV, TSV or XML feeds
// for ACP-enabled agents.
//
//	builder, err := productfeed.NewBuilder(productfeed.FormatCSV)
//	if err != nil {
//		return err
//	}
//	_, err = builder.Build(w, slices.Values(products))
package productfeed
