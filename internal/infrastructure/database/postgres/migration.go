// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/musicstore/storefront/internal/domain/cart"
	"github.com/musicstore/storefront/internal/domain/inventory"
	"github.com/musicstore/storefront/internal/domain/order"
	"github.com/musicstore/storefront/internal/domain/payment"
	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/musicstore/storefront/internal/domain/status"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		// Identity
		&user.User{},
		&user.Address{},

		// Catalog
		&product.Category{},
		&product.Brand{},
		&product.Product{},

		// Directories
		&status.OrderStatus{},
		&payment.PaymentMethod{},
		&payment.DeliveryMethod{},

		// Cart
		&cart.Cart{},
		&cart.CartLine{},

		// Orders
		&order.Order{},
		&order.OrderLine{},
		&order.HistoryEntry{},
		&payment.Payment{},

		// Stock audit trail
		&inventory.StockMovement{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the order pages and admin filters
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_active_stock ON products(is_active, stock)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_history_order_changed ON order_history(order_id, changed_at)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_payments_order_status ON payments(order_id, status)",

		// Stock movement indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements(reference_type, reference_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": successCount,
		"failed":  failCount,
	}).Info("Database indexes created")
	return nil
}

// SeedReferenceData inserts the directories the order workflow cannot run without
func (m *Migration) SeedReferenceData() error {
	if err := m.seedStatuses(); err != nil {
		return fmt.Errorf("failed to seed order statuses: %w", err)
	}

	if err := m.seedPaymentMethods(); err != nil {
		return fmt.Errorf("failed to seed payment methods: %w", err)
	}

	if err := m.seedDeliveryMethods(); err != nil {
		return fmt.Errorf("failed to seed delivery methods: %w", err)
	}

	return nil
}

// SeedDemoData inserts a demo catalog and accounts for development
func (m *Migration) SeedDemoData() error {
	m.logger.Info("Seeding demo data")

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	if err := m.seedUser("admin@example.com", "admin123", "Admin", "User", true); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedUser("test1@example.com", "test123", "Test", "User", false); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	m.logger.Info("Demo data seeded")
	return nil
}

// seedStatuses creates the default workflow labels. The first one is the initial status.
func (m *Migration) seedStatuses() error {
	names := []string{"Новый", "В обработке", "Отправлен", "Доставлен", "Отменён"}

	for _, name := range names {
		s := status.OrderStatus{Name: name}
		if err := m.db.Where(status.OrderStatus{Name: name}).FirstOrCreate(&s).Error; err != nil {
			return err
		}
	}

	m.logger.WithField("count", len(names)).Debug("Order statuses seeded")
	return nil
}

func (m *Migration) seedPaymentMethods() error {
	for _, name := range []string{"cash", "card", "online"} {
		pm := payment.PaymentMethod{Name: name}
		if err := m.db.Where(payment.PaymentMethod{Name: name}).FirstOrCreate(&pm).Error; err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) seedDeliveryMethods() error {
	methods := []payment.DeliveryMethod{
		{Name: "courier", Cost: decimal.NewNullDecimal(decimal.NewFromInt(300)), Description: "Доставка курьером по городу"},
		{Name: "post", Cost: decimal.NewNullDecimal(decimal.NewFromInt(450)), Description: "Почта России"},
		{Name: "pickup", Description: "Самовывоз из магазина"},
	}

	for i := range methods {
		dm := methods[i]
		if err := m.db.Where(payment.DeliveryMethod{Name: dm.Name}).FirstOrCreate(&dm).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedCatalog creates a small instrument catalog
func (m *Migration) seedCatalog() error {
	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		m.logger.Debug("Catalog already seeded")
		return nil
	}

	guitars := product.Category{Name: "Гитары", Description: "Акустические и электрогитары"}
	keys := product.Category{Name: "Клавишные", Description: "Синтезаторы и цифровые пианино"}
	for _, c := range []*product.Category{&guitars, &keys} {
		if err := m.db.Where(product.Category{Name: c.Name}).FirstOrCreate(c).Error; err != nil {
			return err
		}
	}

	fender := product.Brand{Name: "Fender", Country: "США"}
	yamaha := product.Brand{Name: "Yamaha", Country: "Япония"}
	for _, b := range []*product.Brand{&fender, &yamaha} {
		if err := m.db.Where(product.Brand{Name: b.Name}).FirstOrCreate(b).Error; err != nil {
			return err
		}
	}

	products := []product.Product{
		{
			Name:        "Fender Player Stratocaster",
			Description: "Электрогитара, корпус из ольхи",
			Price:       decimal.RequireFromString("89990.00"),
			Stock:       7,
			CategoryID:  &guitars.ID,
			BrandID:     &fender.ID,
			IsActive:    true,
		},
		{
			Name:        "Yamaha F310",
			Description: "Акустическая гитара для начинающих",
			Price:       decimal.RequireFromString("14990.00"),
			Stock:       25,
			CategoryID:  &guitars.ID,
			BrandID:     &yamaha.ID,
			IsActive:    true,
		},
		{
			Name:        "Yamaha P-45",
			Description: "Цифровое пианино, 88 клавиш",
			Price:       decimal.RequireFromString("52990.00"),
			Stock:       3,
			CategoryID:  &keys.ID,
			BrandID:     &yamaha.ID,
			IsActive:    true,
		},
	}

	for i := range products {
		if err := m.db.Create(&products[i]).Error; err != nil {
			return err
		}
		m.logger.WithField("product", products[i].Name).Debug("Created product")
	}

	return nil
}

func (m *Migration) seedUser(email, password, firstName, lastName string, admin bool) error {
	var existing user.User
	if err := m.db.Where("email = ?", email).First(&existing).Error; err == nil {
		m.logger.WithField("email", email).Debug("User already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u := user.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		IsAdmin:   admin,
	}
	if err := m.db.Create(&u).Error; err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{"email": email, "admin": admin}).Info("Created demo user")
	return nil
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() error {
	tables, err := m.db.Migrator().GetTables()
	if err != nil {
		return err
	}

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		m.logger.WithFields(logrus.Fields{"table": table, "records": count}).Info("Table")
	}

	m.logger.WithFields(logrus.Fields{
		"tables":  len(tables),
		"records": totalRecords,
	}).Info("Database summary")

	return nil
}
