package appointment

import "github.com/serenity-spa/booking-agent/pkg/txmanager"

// DBExecutor интерфейс для работы с БД, поддерживает *sql.DB и *sql.Tx
type DBExecutor = txmanager.Executor
