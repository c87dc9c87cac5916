package models

// All lists every persisted model, in dependency order, for test schemas.
func All() []any {
	return []any{
		&Admin{},
		&AdminActivity{},
		&Tool{},
		&ToolI18n{},
		&Product{},
		&ProductI18n{},
		&ProductTool{},
		&OutboxEvent{},
		&OutboxDLQ{},
		&User{},
		&UserAccount{},
		&UserSession{},
		&UserPurchase{},
		&PaymentTransaction{},
	}
}
