package ecomschema

// tableOrder lists the tables in foreign key dependency order. Creation
// follows this order and must not be reshuffled.
var tableOrder = []string{
	"users",
	"categories",
	"products",
	"addresses",
	"shopping_carts",
	"cart_items",
	"orders",
	"order_items",
	"reviews",
}

var tableDDL = map[string]string{
	"users": `
		CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			first_name VARCHAR(50),
			last_name VARCHAR(50),
			phone VARCHAR(20),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE
		);`,

	"categories": `
		CREATE TABLE IF NOT EXISTS categories (
			category_id SERIAL PRIMARY KEY,
			category_name VARCHAR(100) NOT NULL,
			description TEXT,
			parent_category_id INTEGER REFERENCES categories(category_id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE
		);`,

	"products": `
		CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			product_name VARCHAR(200) NOT NULL,
			description TEXT,
			price DECIMAL(10, 2) NOT NULL,
			category_id INTEGER REFERENCES categories(category_id),
			sku VARCHAR(50) UNIQUE NOT NULL,
			stock_quantity INTEGER DEFAULT 0,
			weight DECIMAL(8, 2),
			dimensions JSONB,
			images JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE
		);`,

	"addresses": `
		CREATE TABLE IF NOT EXISTS addresses (
			address_id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(user_id),
			address_type VARCHAR(20) CHECK (address_type IN ('billing', 'shipping')),
			street_address VARCHAR(200) NOT NULL,
			city VARCHAR(100) NOT NULL,
			state VARCHAR(100),
			postal_code VARCHAR(20),
			country VARCHAR(100) NOT NULL,
			is_default BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

	"shopping_carts": `
		CREATE TABLE IF NOT EXISTS shopping_carts (
			cart_id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(user_id),
			session_id VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

	"cart_items": `
		CREATE TABLE IF NOT EXISTS cart_items (
			cart_item_id SERIAL PRIMARY KEY,
			cart_id INTEGER REFERENCES shopping_carts(cart_id) ON DELETE CASCADE,
			product_id INTEGER REFERENCES products(product_id),
			quantity INTEGER NOT NULL DEFAULT 1,
			price DECIMAL(10, 2) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(cart_id, product_id)
		);`,

	"orders": `
		CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(user_id),
			order_number VARCHAR(50) UNIQUE NOT NULL,
			order_status VARCHAR(20) DEFAULT 'pending'
				CHECK (order_status IN ('pending', 'confirmed', 'processing', 'shipped', 'delivered', 'cancelled')),
			total_amount DECIMAL(10, 2) NOT NULL,
			shipping_address_id INTEGER REFERENCES addresses(address_id),
			billing_address_id INTEGER REFERENCES addresses(address_id),
			payment_method VARCHAR(50),
			payment_status VARCHAR(20) DEFAULT 'pending'
				CHECK (payment_status IN ('pending', 'paid', 'failed', 'refunded')),
			shipping_cost DECIMAL(10, 2) DEFAULT 0,
			tax_amount DECIMAL(10, 2) DEFAULT 0,
			notes TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

	"order_items": `
		CREATE TABLE IF NOT EXISTS order_items (
			order_item_id SERIAL PRIMARY KEY,
			order_id INTEGER REFERENCES orders(order_id) ON DELETE CASCADE,
			product_id INTEGER REFERENCES products(product_id),
			quantity INTEGER NOT NULL,
			unit_price DECIMAL(10, 2) NOT NULL,
			total_price DECIMAL(10, 2) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

	"reviews": `
		CREATE TABLE IF NOT EXISTS reviews (
			review_id SERIAL PRIMARY KEY,
			product_id INTEGER REFERENCES products(product_id) ON DELETE CASCADE,
			user_id INTEGER REFERENCES users(user_id),
			rating INTEGER CHECK (rating >= 1 AND rating <= 5),
			title VARCHAR(200),
			comment TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(product_id, user_id)
		);`,
}

// Index creation failures are logged as warnings and do not fail the run.
var indexDDL = []string{
	"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);",
	"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku);",
	"CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);",
	"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(order_status);",
	"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);",
	"CREATE INDEX IF NOT EXISTS idx_cart_items_cart ON cart_items(cart_id);",
	"CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id);",
	"CREATE INDEX IF NOT EXISTS idx_addresses_user ON addresses(user_id);",
}
