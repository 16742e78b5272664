package core

// validation.go holds the single-table rules:
//
//  1. Header validation: every recognized column is exposed by some row
//  2. Content validation: required columns are populated in every row
//  3. Entity code uniqueness
//  4. Facilities BcGuid presence
//
// Each rule returns its diagnostics as a fresh slice. Rules that read a
// column directly return a *ContractError when a row lacks it.

import (
	"fmt"

	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

// ValidateHeaders returns a header error for every header in headers that no
// row exposes. A header present in any single row counts as present. A table
// with no rows has nothing to check and yields no errors.
func ValidateHeaders(table string, rows []Row, headers []string) []ValidationError {
	if len(rows) == 0 {
		return nil
	}

	observed := observedHeaders(rows)
	var errs []ValidationError
	for _, h := range headers {
		if _, ok := observed[h]; !ok {
			errs = append(errs, NewHeaderError(table, h))
		}
	}
	return errs
}

// ValidateContents returns one missing-value error per (row, column) pair
// where a required column is empty or absent.
func ValidateContents(table string, rows []Row, required []string) []ValidationError {
	var errs []ValidationError
	for i, row := range rows {
		for _, h := range required {
			if row[h] == "" {
				errs = append(errs, NewMissingValueError(table, rowStart+i, h,
					fmt.Sprintf("%s entry must have a %s", table, h)))
			}
		}
	}
	return errs
}

// ValidateEntityCodes returns one error per entity code that occurs more than
// once, in order of first occurrence. A blank code counts like any other, so
// two rows without a code are duplicates.
func ValidateEntityCodes(entities []Row) ([]ValidationError, error) {
	counts := make(map[string]int, len(entities))
	var order []string
	for i, row := range entities {
		code, err := row.Lookup(schema.Entities, rowStart+i, schema.EntityCode)
		if err != nil {
			return nil, err
		}
		if counts[code] == 0 {
			order = append(order, code)
		}
		counts[code]++
	}

	var errs []ValidationError
	for _, code := range order {
		if counts[code] > 1 {
			errs = append(errs, NewDuplicateCodeError(schema.Entities, code))
		}
	}
	return errs, nil
}

// ValidateFacilitiesGUIDs returns a missing-value error for every entity in
// the Facilities namespace without a BcGuid. Rows with a BcGuid are not
// checked further.
func ValidateFacilitiesGUIDs(entities []Row) ([]ValidationError, error) {
	var errs []ValidationError
	for i, row := range entities {
		rowNum := rowStart + i
		guid, err := row.Lookup(schema.Entities, rowNum, schema.BcGUID)
		if err != nil {
			return nil, err
		}
		if guid != "" {
			continue
		}
		namespace, err := row.Lookup(schema.Entities, rowNum, schema.Namespace)
		if err != nil {
			return nil, err
		}
		if namespace != schema.FacilitiesNamespace {
			continue
		}

		code := row[schema.EntityCode]
		errs = append(errs, NewMissingValueError(schema.Entities, rowNum, schema.BcGUID,
			fmt.Sprintf("%s in %s namespace must have a guid obtained through DB API export building config operation.",
				code, schema.FacilitiesNamespace)))
	}
	return errs, nil
}
