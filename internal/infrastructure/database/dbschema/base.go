package dbschema

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
)

// BaseModel carries the columns shared by every schema.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// JSONMap stores a map[string]any as a JSON column.
type JSONMap = datatypes.JSONMap

// JSONContent stores a message's content envelope as JSON
type JSONContent chat.Content

func (c JSONContent) Value() (driver.Value, error) {
	return json.Marshal(chat.Content(c))
}

func (c *JSONContent) Scan(value any) error {
	if value == nil {
		*c = JSONContent{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported content column type %T", value)
	}
	var content chat.Content
	if err := json.Unmarshal(bytes, &content); err != nil {
		return err
	}
	*c = JSONContent(content)
	return nil
}
