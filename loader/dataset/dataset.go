// Package dataset reads the retail toy catalog from CSV and drops rows
// that are missing required fields, so nothing empty ever reaches the
// chunker.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"retailrag/types"
)

var requiredColumns = []string{"product_id", "product_name", "description", "list_price"}

func Load(path string) ([]types.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func Read(r io.Reader) ([]types.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("dataset is missing column %q", name)
		}
	}

	var products []types.Product
	dropped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}

		p, ok := parseRecord(record, cols)
		if !ok {
			dropped++
			continue
		}
		products = append(products, p)
	}
	if dropped > 0 {
		log.Printf("[DATASET] dropped %d rows with missing required fields", dropped)
	}
	return products, nil
}

func parseRecord(record []string, cols map[string]int) (types.Product, bool) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	p := types.Product{
		ProductID:   field("product_id"),
		ProductName: field("product_name"),
		Description: field("description"),
	}
	if p.ProductID == "" || p.ProductName == "" || p.Description == "" {
		return types.Product{}, false
	}
	price, err := strconv.ParseFloat(field("list_price"), 64)
	if err != nil {
		return types.Product{}, false
	}
	p.ListPrice = price
	return p, true
}
