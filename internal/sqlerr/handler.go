package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/contosopizza/internal/errs"
	"github.com/deppfellow/contosopizza/internal/repository"
	"github.com/deppfellow/contosopizza/internal/validation"
	"github.com/go-playground/validator/v10"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode returns the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError copies a Postgres error into an *Error that keeps the
// original as its cause.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// entities names the tables of the schema in client messages.
var entities = map[string]string{
	"customers":     "Customer",
	"products":      "Product",
	"orders":        "Order",
	"order_details": "Order Detail",
}

var titleCaser = cases.Title(language.English)

// humanizeText turns "first_name" into "First Name".
func humanizeText(text string) string {
	return titleCaser.String(strings.ReplaceAll(text, "_", " "))
}

// entityName names the row kind of table. Unknown tables are singularized
// by dropping a trailing "s".
func entityName(table string) string {
	if name, ok := entities[table]; ok {
		return name
	}
	if table == "" {
		return "record"
	}
	return humanizeText(strings.TrimSuffix(table, "s"))
}

// referencedEntity names the row a foreign key column points at:
// product_id -> Product.
func referencedEntity(column string) string {
	base := strings.TrimSuffix(strings.ToLower(column), "_id")
	if base == "" || base == strings.ToLower(column) {
		return "record"
	}
	return entityName(base + "s")
}

// generateErrorCode builds codes such as PRODUCT_ALREADY_EXISTS from the
// table and the violation.
func generateErrorCode(table string, code Code) string {
	action := "ERROR"
	switch code {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	domain := "RECORD"
	if table != "" {
		domain = errs.MakeUpperCaseWithUnderscores(entityName(table))
	}
	return domain + "_" + action
}

var (
	uniqueKeyRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)
	notFoundRe  = regexp.MustCompile(`table:([a-z_]+):`)
)

// extractColumnForUniqueViolation reads the column out of constraints named
// unique_<table>_<column> or <table>_<column>_key.
func extractColumnForUniqueViolation(constraint string) string {
	if rest, ok := strings.CutPrefix(constraint, "unique_"); ok {
		if i := strings.LastIndex(rest, "_"); i > 0 {
			return rest[i+1:]
		}
	}

	if m := uniqueKeyRe.FindStringSubmatch(constraint); m != nil {
		return m[1]
	}
	return ""
}

// extractColumnForCheckViolation reads the column out of constraints named
// <table>_<column>_check, the name Postgres gives column checks.
func extractColumnForCheckViolation(table, constraint string) string {
	rest, ok := strings.CutPrefix(constraint, table+"_")
	if !ok || table == "" {
		return ""
	}
	column, ok := strings.CutSuffix(rest, "_check")
	if !ok {
		return ""
	}
	return column
}

// pgHTTPError maps a constraint violation to a 400 naming the offending
// entity and field. Other server errors become a 500.
func pgHTTPError(pgErr *pgconn.PgError) *errs.HTTPError {
	sqlErr := ConvertPgError(pgErr)
	code := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	entity := entityName(sqlErr.TableName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		msg := fmt.Sprintf("The referenced %s does not exist", referencedEntity(sqlErr.ColumnName))
		return errs.NewBadRequestError(msg, false, &code, nil, nil)

	case UniqueViolation:
		field := "identifier"
		if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
			field = humanizeText(column)
		}
		msg := fmt.Sprintf("A %s with this %s already exists", entity, field)
		return errs.NewBadRequestError(msg, true, &code, nil, nil)

	case NotNullViolation:
		field := "field"
		if sqlErr.ColumnName != "" {
			field = humanizeText(sqlErr.ColumnName)
		}
		fieldErrors := []errs.FieldError{{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"}}
		return errs.NewBadRequestError(fmt.Sprintf("The %s is required", field), true, &code, fieldErrors, nil)

	case CheckViolation:
		column := sqlErr.ColumnName
		if column == "" {
			column = extractColumnForCheckViolation(sqlErr.TableName, sqlErr.ConstraintName)
		}
		msg := "One or more values do not meet required conditions"
		if column != "" {
			msg = fmt.Sprintf("The %s value does not meet required conditions", humanizeText(column))
		}
		return errs.NewBadRequestError(msg, true, &code, nil, nil)

	case StringDataTruncation, NumericOutOfRange, InvalidText:
		return errs.NewBadRequestError("One or more values are out of range or malformed", true, nil, nil, nil)
	}

	return errs.NewInternalServerError()
}

// HandleError converts an error from the repository layer into the
// *errs.HTTPError the API answers with:
//
//   - an *errs.HTTPError is returned unchanged
//   - ErrConcurrencyConflict becomes a 409
//   - entity validation failures become a 400 with field errors
//   - Postgres constraint violations become a 400 with a code such as
//     PRODUCT_ALREADY_EXISTS
//   - missing rows become a 404 naming the entity
//   - anything else becomes a 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if errors.Is(err, repository.ErrConcurrencyConflict) {
		return errs.NewConflictError("The record was changed or deleted by someone else, reload and try again", true)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return errs.NewBadRequestError("Validation failed", true, nil, validation.FieldErrors(validationErrs), nil)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgHTTPError(pgErr)
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		if m := notFoundRe.FindStringSubmatch(err.Error()); m != nil {
			return errs.NewNotFoundError(entityName(m[1])+" not found", true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
