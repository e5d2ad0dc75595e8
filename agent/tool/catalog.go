package tool

import (
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	storex "github.com/tanpawarit/screening-decision/agent/store"
)

const (
	ToolCreateInterventionDecision = "create_intervention_decision"
	ToolCheckDuplicateDecision     = "check_duplicate_decision"
	ToolUpdateConversationStatus   = "update_conversation_status"
	ToolNotifyRecruiters           = "notify_recruiters"
)

// UnknownToolLabel replaces tool names outside the catalog in metric labels.
const UnknownToolLabel = "unknown"

// MetricLabel keeps metric cardinality bounded by the catalog.
func MetricLabel(name string) string {
	switch name {
	case ToolCreateInterventionDecision, ToolCheckDuplicateDecision, ToolUpdateConversationStatus, ToolNotifyRecruiters:
		return name
	}
	return UnknownToolLabel
}

// CatalogVersion changes whenever a tool name or parameter changes. Catalog and handlers move together.
const CatalogVersion = "2"

func Catalog() []contractx.ToolDefinition {
	return []contractx.ToolDefinition{
		{
			Name:        ToolCreateInterventionDecision,
			Description: "Creates a decision record when recruiter intervention is needed.",
			Params: []contractx.ParamDefinition{
				{Name: "title", Type: contractx.ParamString, Description: "Descriptive title for the intervention decision", Required: true},
				{Name: "body", Type: contractx.ParamString, Description: "Detailed body explaining the intervention need", Required: true},
				{Name: "decision_type", Type: contractx.ParamString, Description: "Type of intervention needed", Enum: decisionTypeEnum(), Required: true},
				{Name: "priority", Type: contractx.ParamString, Description: "Priority level for the intervention", Enum: priorityEnum(), Required: true},
				{Name: "quoted_excerpts", Type: contractx.ParamArray, Items: contractx.ParamString, Description: "Relevant quoted excerpts from the conversation", Required: true},
				{Name: "ai_reasoning", Type: contractx.ParamString, Description: "Why this intervention is needed", Required: true},
				{Name: "team_id", Type: contractx.ParamString, Description: "Team ID for access control", Required: true},
				{Name: "client_id", Type: contractx.ParamString, Description: "Client ID for access control", Required: true},
				{Name: "job_posting_match_id", Type: contractx.ParamString, Description: "Job posting match ID", Required: true},
				{Name: "clinician_id", Type: contractx.ParamString, Description: "Clinician ID", Required: true},
				{Name: "related_message_ids", Type: contractx.ParamArray, Items: contractx.ParamString, Description: "IDs of messages that triggered this decision"},
			},
		},
		{
			Name:        ToolCheckDuplicateDecision,
			Description: "Checks if a similar decision already exists to prevent duplicates.",
			Params: []contractx.ParamDefinition{
				{Name: "decision_title", Type: contractx.ParamString, Description: "Title of the decision to check", Required: true},
				{Name: "decision_type", Type: contractx.ParamString, Description: "Type of decision", Enum: decisionTypeEnum(), Required: true},
				{Name: "job_posting_match_id", Type: contractx.ParamString, Description: "Job posting match ID", Required: true},
				{Name: "time_window_hours", Type: contractx.ParamNumber, Description: "Time window in hours to check for duplicates (default 24)"},
			},
		},
		{
			Name:        ToolUpdateConversationStatus,
			Description: "Updates the conversation status after analysis completion.",
			Params: []contractx.ParamDefinition{
				{Name: "status", Type: contractx.ParamString, Description: "Analysis status", Required: true},
				{Name: "analysis_completed", Type: contractx.ParamBoolean, Description: "Whether analysis completed successfully"},
				{Name: "decisions_created", Type: contractx.ParamInteger, Description: "Number of decisions created"},
			},
		},
		{
			Name:        ToolNotifyRecruiters,
			Description: "Sends notifications to relevant recruiters about new decisions.",
			Params: []contractx.ParamDefinition{
				{Name: "decision_id", Type: contractx.ParamString, Description: "ID of the created decision", Required: true},
				{Name: "team_id", Type: contractx.ParamString, Description: "Team ID", Required: true},
				{Name: "client_id", Type: contractx.ParamString, Description: "Client ID", Required: true},
				{Name: "priority", Type: contractx.ParamString, Description: "Decision priority", Enum: priorityEnum()},
				{Name: "notification_type", Type: contractx.ParamString, Description: "Type of notification: lower-case letters, digits, underscore or hyphen (default new_decision)"},
			},
		},
	}
}

// Infos converts the catalog into eino tool descriptors.
func Infos() []*schema.ToolInfo {
	defs := Catalog()
	out := make([]*schema.ToolInfo, 0, len(defs))
	for _, def := range defs {
		params := make(map[string]*schema.ParameterInfo, len(def.Params))
		for _, p := range def.Params {
			info := &schema.ParameterInfo{
				Type:     dataType(p.Type),
				Desc:     p.Description,
				Enum:     p.Enum,
				Required: p.Required,
			}
			if p.Type == contractx.ParamArray {
				info.ElemInfo = &schema.ParameterInfo{Type: dataType(p.Items)}
			}
			params[p.Name] = info
		}
		out = append(out, &schema.ToolInfo{
			Name:        def.Name,
			Desc:        def.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return out
}

func dataType(t contractx.ParamType) schema.DataType {
	switch t {
	case contractx.ParamNumber:
		return schema.Number
	case contractx.ParamInteger:
		return schema.Integer
	case contractx.ParamBoolean:
		return schema.Boolean
	case contractx.ParamArray:
		return schema.Array
	default:
		return schema.String
	}
}

func decisionTypeEnum() []string {
	out := make([]string, 0, len(storex.DecisionTypes))
	for _, t := range storex.DecisionTypes {
		out = append(out, string(t))
	}
	return out
}

func priorityEnum() []string {
	out := make([]string, 0, len(storex.Priorities))
	for _, p := range storex.Priorities {
		out = append(out, string(p))
	}
	return out
}
