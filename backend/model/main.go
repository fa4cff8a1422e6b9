package model

import (
	"insightlink/backend/common"

	"github.com/burugo/thing"
	redisCache "github.com/burugo/thing/drivers/cache/redis"
	"github.com/burugo/thing/drivers/db/sqlite"
)

func createRootAccountIfNeed() error {
	users, err := UserDB.Query(thing.QueryParams{}).Fetch(0, 1)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		common.SysLog("no user exists, create a root user for you: username is root, password is 123456")
		hashedPassword, err := common.Password2Hash("123456")
		if err != nil {
			return err
		}
		rootUser := &User{
			Username:    "root",
			Password:    hashedPassword,
			Role:        common.RoleRootUser,
			Status:      common.UserStatusEnabled,
			DisplayName: "Root User",
			Email:       "root@localhost",
			Tier:        TierFree,
		}
		if err := UserDB.Save(rootUser); err != nil {
			return err
		}
	}
	return nil
}

func InitDB() (err error) {
	dbAdapter, err := sqlite.NewSQLiteAdapter(common.SQLitePath)
	if err != nil {
		common.FatalLog(err)
		return err
	}
	var cacheClient thing.CacheClient = nil
	if common.RedisEnabled && common.RDB != nil {
		cacheClient, err = redisCache.NewClient(common.RDB, nil)
		if err != nil {
			return err
		}
	}
	thing.Configure(dbAdapter, cacheClient)

	// 1. AutoMigrate all models first
	err = thing.AutoMigrate(&User{}, &Option{}, &File{}, &Link{}, &Visit{}, &CardKey{}, &Plan{}, &Payment{}, &AuditLog{})
	if err != nil {
		return err
	}

	// 2. Initialize all ORM instances
	if err := UserInit(); err != nil {
		return err
	}
	if err := OptionInit(); err != nil {
		return err
	}
	// InitOptionMapFromDB must run after OptionInit and AutoMigrate
	if err := InitOptionMapFromDB(); err != nil {
		return err
	}
	if err := FileInit(); err != nil {
		return err
	}
	if err := LinkInit(); err != nil {
		return err
	}
	if err := VisitInit(); err != nil {
		return err
	}
	if err := CardKeyInit(); err != nil {
		return err
	}
	if err := PlanInit(); err != nil {
		return err
	}
	if err := PaymentInit(); err != nil {
		return err
	}
	if err := AuditLogInit(); err != nil {
		return err
	}

	// 3. Data-dependent bootstrap
	if err := createRootAccountIfNeed(); err != nil {
		return err
	}
	return seedDefaultPlans()
}

func CloseDB() error {
	// Thing ORM does not require an explicit close.
	return nil
}
