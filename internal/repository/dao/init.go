package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Category{},
		&Ingredient{},
		&Dish{},
		&DishIngredient{},
		&Stock{},
		&StockTransaction{},
		&Table{},
		&Reservation{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&DailySales{},
		&PopularDish{},
	)
}

var (
	// lockForUpdate serializes writers on a row. SQLite has no row locks and
	// the driver drops the clause; its single writer gives the same guarantee.
	lockForUpdate = clause.Locking{Strength: "UPDATE"}
	lockForShare  = clause.Locking{Strength: "SHARE"}
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// orderBy maps a client ordering such as "-price" onto a whitelisted column.
// Unknown fields fall back to def.
func orderBy(ordering string, columns map[string]string, def string) string {
	desc := strings.HasPrefix(ordering, "-")
	column, ok := columns[strings.TrimPrefix(ordering, "-")]
	if !ok {
		return def
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

func likePattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}
