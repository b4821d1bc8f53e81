package api

const amountPattern = `"^[0-9]{1,12}(\\.[0-9]{1,2})?$"`

const openAccountSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["owner_id", "type", "initial_deposit"],
  "properties": {
    "owner_id": {"type": "string", "minLength": 1, "maxLength": 64},
    "type": {"type": "string", "enum": ["SAVINGS", "CURRENT"]},
    "initial_deposit": {"type": "string", "pattern": ` + amountPattern + `}
  }
}`

const movementSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["amount"],
  "properties": {
    "amount": {"type": "string", "pattern": ` + amountPattern + `},
    "remarks": {"type": "string", "maxLength": 255}
  }
}`

const transferSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["from", "to", "amount", "method"],
  "properties": {
    "from": {"type": "string", "pattern": "^[0-9]{12}$"},
    "to": {"type": "string", "pattern": "^[0-9]{12}$"},
    "amount": {"type": "string", "pattern": ` + amountPattern + `},
    "method": {"type": "string", "minLength": 1, "maxLength": 16},
    "remarks": {"type": "string", "maxLength": 255}
  }
}`

const accountStatusSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["active"],
  "properties": {
    "active": {"type": "boolean"}
  }
}`

const reverseSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["reason"],
  "properties": {
    "reason": {"type": "string", "minLength": 1, "maxLength": 255}
  }
}`

const remarksSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["remarks"],
  "properties": {
    "remarks": {"type": "string", "maxLength": 255}
  }
}`
