package idgen

import (
	"log"
	"reflect"

	"poultry-app/types"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var node *snowflake.Node

func Init() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("Failed to init Snowflake: %v", err)
	}
}

func GenerateID() int64 {
	return node.Generate().Int64()
}

// AutoGenerateSnowflakeID registers a create callback that fills zero
// SnowflakeID primary keys before insert.
func AutoGenerateSnowflakeID(db *gorm.DB) {
	snowflakeType := reflect.TypeOf(types.SnowflakeID(0))

	err := db.Callback().Create().Before("gorm:create").Register("idgen:snowflake_id", func(tx *gorm.DB) {
		if tx.Statement == nil || tx.Statement.Schema == nil {
			return
		}
		field := tx.Statement.Schema.LookUpField("ID")
		if field == nil || field.FieldType != snowflakeType {
			return
		}

		assign := func(rv reflect.Value) {
			if _, isZero := field.ValueOf(tx.Statement.Context, rv); isZero {
				_ = field.Set(tx.Statement.Context, rv, types.SnowflakeID(GenerateID()))
			}
		}

		switch tx.Statement.ReflectValue.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < tx.Statement.ReflectValue.Len(); i++ {
				assign(tx.Statement.ReflectValue.Index(i))
			}
		case reflect.Struct:
			assign(tx.Statement.ReflectValue)
		}
	})
	if err != nil {
		log.Fatalf("Failed to register snowflake callback: %v", err)
	}
}
