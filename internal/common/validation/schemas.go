package validation

// TurnInputSchema describes a dialogue turn payload as received by the worker and the chat API.
const TurnInputSchema = `{
  "type": "object",
  "required": ["userMessage"],
  "properties": {
    "conversationId": {"type": "string"},
    "agentType":      {"type": "string"},
    "workflowType":   {"type": "string"},
    "currentStep":    {"type": "string"},
    "userMessage":    {"type": "string", "minLength": 1, "maxLength": 2000},
    "nlu": {
      "type": "object",
      "properties": {
        "intent":         {"type": "string"},
        "entities":       {"type": "object"},
        "clarifications": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

// AssistantSchema describes assistant.json.
const AssistantSchema = `{
  "type": "object",
  "required": ["name", "is_active"],
  "properties": {
    "name":          {"type": "string", "minLength": 1},
    "description":   {"type": "string"},
    "is_active":     {"type": "boolean"},
    "workflow_type": {"type": "string"},
    "features":      {"type": "array", "items": {"type": "string"}},
    "quick_actions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "message"],
        "properties": {
          "label":   {"type": "string"},
          "message": {"type": "string"}
        }
      }
    },
    "pricing_file": {"type": "string"},
    "data_file":    {"type": "string"}
  }
}`

// PricingSchema describes pricing.json.
const PricingSchema = `{
  "type": "object",
  "properties": {
    "currency": {"type": "string"},
    "categories": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["base_price"],
        "properties": {"base_price": {"type": "integer", "minimum": 0}}
      }
    },
    "discounts": {
      "type": "object",
      "properties": {
        "weekly":  {"$ref": "#/definitions/discount"},
        "monthly": {"$ref": "#/definitions/discount"}
      }
    },
    "extra_fees": {
      "type": "object",
      "properties": {"one_way": {"type": "integer", "minimum": 0}}
    }
  },
  "definitions": {
    "discount": {
      "type": "object",
      "required": ["days", "percent"],
      "properties": {
        "days":    {"type": "integer", "minimum": 0},
        "percent": {"type": "number", "minimum": 0, "maximum": 100}
      }
    }
  }
}`

// InventorySchema describes data.json: vehicles grouped by category key.
const InventorySchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "items": {
      "type": "object",
      "required": ["brand", "model"],
      "properties": {
        "brand": {"type": "string"},
        "model": {"type": "string"}
      }
    }
  }
}`

// ChatRequestSchema describes the body of POST /api/assistants/:type/chat.
// An empty message is rejected by the handler with its own error text.
const ChatRequestSchema = `{
  "type": "object",
  "properties": {
    "message":        {"type": "string", "maxLength": 2000},
    "conversationId": {"type": "string", "maxLength": 128},
    "nlu": {
      "type": "object",
      "properties": {
        "intent":         {"type": "string"},
        "entities":       {"type": "object"},
        "clarifications": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`
