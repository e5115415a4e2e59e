package models

// All lists every persisted model, in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&ExpenseType{},
		&Institution{},
		&Income{},
		&Expense{},
		&Budget{},
		&BudgetIncomeSource{},
		&Notification{},
		&NotificationSettings{},
		&AuditLog{},
	}
}
