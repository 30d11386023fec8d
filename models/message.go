/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tomoncle/sieve/filter"
	"github.com/uptrace/bun"
)

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID  uuid.UUID `bun:"client_id,type:varchar(36),notnull" json:"client_id"`
	Sender    string    `bun:"sender,notnull" json:"sender"`
	Recipient string    `bun:"recipient,notnull" json:"recipient"`
	Subject   string    `bun:"subject" json:"subject"`
	Body      string    `bun:"body,type:text" json:"body"`
	Priority  int       `bun:"priority,notnull" json:"priority"`
	Read      bool      `bun:"read,notnull" json:"read"`
	SentAt    time.Time `bun:"sent_at,nullzero" json:"sent_at"`
	DeletedAt time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at"`
}

// MessageColumns is the filter whitelist of messages. The body is not
// filterable.
var MessageColumns = filter.NewRegistry[Message]("message",
	filter.String("sender", "sender"),
	filter.String("recipient", "recipient"),
	filter.String("subject", "subject"),
	filter.Number("priority", "priority"),
	filter.Boolean("read", "read"),
	filter.Date("sentAt", "sent_at"),
)

type MessageResponse struct {
	ID        int64      `json:"id"`
	Sender    string     `json:"sender"`
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Priority  int        `json:"priority"`
	Read      bool       `json:"read"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}

func NewMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Subject:   m.Subject,
		Body:      m.Body,
		Priority:  m.Priority,
		Read:      m.Read,
		SentAt:    optionalTime(m.SentAt),
	}
}
