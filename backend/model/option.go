package model

import (
	"insightlink/backend/common"

	"github.com/burugo/thing"
)

// Option is a persisted key/value system setting. Tier limit overrides use
// keys of the form TIER_<TIERNAME>_<DIMENSION>; -1 is the unlimited sentinel
// for numeric dimensions.
type Option struct {
	thing.BaseModel
	Key   string `db:"key,index" json:"key"`
	Value string `db:"value" json:"value"`
}

func (o *Option) TableName() string {
	return "options"
}

var OptionDB *thing.Thing[*Option]

// OptionMap is the in-memory cache over the options table, guarded by
// common.OptionMapRWMutex.
var OptionMap map[string]string

func OptionInit() error {
	var err error
	OptionDB, err = thing.Use[*Option]()
	return err
}

func AllOptions() ([]*Option, error) {
	return OptionDB.Query(thing.QueryParams{}).Fetch(0, 1000)
}

// InitOptionMapFromDB loads every persisted option into the cache.
func InitOptionMapFromDB() error {
	options, err := AllOptions()
	if err != nil {
		return err
	}
	common.OptionMapRWMutex.Lock()
	defer common.OptionMapRWMutex.Unlock()
	OptionMap = make(map[string]string, len(options))
	for _, option := range options {
		OptionMap[option.Key] = option.Value
	}
	return nil
}

// GetOption returns the cached value for key and whether it is set.
func GetOption(key string) (string, bool) {
	common.OptionMapRWMutex.RLock()
	defer common.OptionMapRWMutex.RUnlock()
	value, ok := OptionMap[key]
	return value, ok
}

// UpdateOption persists a key/value pair and refreshes the cache entry.
func UpdateOption(key string, value string) error {
	options, err := OptionDB.Where("key = ?", key).Fetch(0, 1)
	if err != nil {
		return err
	}
	var option *Option
	if len(options) == 0 {
		option = &Option{Key: key}
	} else {
		option = options[0]
	}
	option.Value = value
	if err := OptionDB.Save(option); err != nil {
		return err
	}
	updateOptionMapValue(key, value)
	return nil
}

func updateOptionMapValue(key string, value string) {
	common.OptionMapRWMutex.Lock()
	defer common.OptionMapRWMutex.Unlock()
	if OptionMap == nil {
		OptionMap = make(map[string]string)
	}
	OptionMap[key] = value
}
