package config

import "time"

// ModelSpec is a built-in sandbox endpoint definition
type ModelSpec struct {
	Name        string // catalog key, also datasaur.endpoints.<name>
	Tool        string // MCP tool name
	Label       string // human label used in log and error messages
	URLEnv      string
	TimeoutEnv  string
	Timeout     time.Duration
	Description string
	ArgHelp     string // description of the tool's single argument
}

// CSVEndpoint is the endpoint that receives CSV-derived rows
const CSVEndpoint = "csv"

const codingAssistantUsage = "Use this for complex programming challenges or coding assistance tasks."

var csvSpec = ModelSpec{
	Name:        CSVEndpoint,
	Tool:        "process_and_send_csv",
	Label:       "CSV",
	URLEnv:      "DATASAUR_CSV_API_URL",
	TimeoutEnv:  "DATASAUR_CSV_TIMEOUT",
	Timeout:     60 * time.Second,
	Description: "Reads a CSV file from the specified path, converts to JSON, sends its content to the specific Datasaur CSV API sandbox, and returns the API's result. Provide the full path to the CSV file as a string.",
	ArgHelp:     "Full path to the CSV file.",
}

// promptSpecs are registered in this order as call_* tools
var promptSpecs = []ModelSpec{
	{
		Name:        "grok_uncensored",
		Tool:        "call_grok_uncensored",
		Label:       "Grok",
		URLEnv:      "DATASAUR_GROK_UNCENSORED_API_URL",
		TimeoutEnv:  "DATASAUR_GROK_UNCENSORED_TIMEOUT",
		Timeout:     120 * time.Second,
		Description: "Sends a given prompt string to the 'grok uncensored' model via the specific Datasaur Grok API sandbox and returns the model's response. Use this for general queries or instructions intended for an uncensored LLM.",
		ArgHelp:     "The text prompt to send to the Grok model.",
	},
	{
		Name:        "gpt_4_1",
		Tool:        "call_GPT_4_1",
		Label:       "GPT-4.1",
		URLEnv:      "DATASAUR_GPT41_API_URL",
		TimeoutEnv:  "DATASAUR_GPT41_TIMEOUT",
		Timeout:     180 * time.Second,
		Description: "Sends a given prompt string to the 'GPT 4.1' AI coding assistant model via the specific Datasaur API sandbox and returns the model's response. " + codingAssistantUsage,
		ArgHelp:     "The text prompt to send to the GPT-4.1 model.",
	},
	{
		Name:        "gpt_o3",
		Tool:        "call_GPT_o3",
		Label:       "GPT o3",
		URLEnv:      "DATASAUR_GPT_O3_API_URL",
		TimeoutEnv:  "DATASAUR_GPT_O3_TIMEOUT",
		Timeout:     180 * time.Second,
		Description: "Sends a given prompt string to the 'GPT o3' AI coding assistant model via the specific Datasaur API sandbox and returns the model's response. " + codingAssistantUsage,
		ArgHelp:     "The text prompt to send to the GPT o3 model.",
	},
	{
		Name:        "grok_3",
		Tool:        "call_grok_3",
		Label:       "Grok 3",
		URLEnv:      "DATASAUR_GROK_3_API_URL",
		TimeoutEnv:  "DATASAUR_GROK_3_TIMEOUT",
		Timeout:     180 * time.Second,
		Description: "Sends a given prompt string to the 'Grok 3' AI coding assistant model via the specific Datasaur API sandbox and returns the model's response. " + codingAssistantUsage,
		ArgHelp:     "The text prompt to send to the Grok 3 model.",
	},
	{
		Name:        "gemini_exp",
		Tool:        "call_gemini_exp",
		Label:       "Gemini Exp",
		URLEnv:      "DATASAUR_GEMINI_EXP_API_URL",
		TimeoutEnv:  "DATASAUR_GEMINI_EXP_TIMEOUT",
		Timeout:     180 * time.Second,
		Description: "Sends a given prompt string to the 'Gemini 2.5 Pro Experimental' AI coding assistant model via the specific Datasaur API sandbox and returns the model's response. " + codingAssistantUsage,
		ArgHelp:     "The text prompt to send to the Gemini 2.5 Pro Exp model.",
	},
	{
		Name:        "deepseek_r1",
		Tool:        "call_deepseek_r1",
		Label:       "DeepSeek R1",
		URLEnv:      "DATASAUR_DEEPSEEK_R1_API_URL",
		TimeoutEnv:  "DATASAUR_DEEPSEEK_R1_TIMEOUT",
		Timeout:     180 * time.Second,
		Description: "Sends a given prompt string to the 'DeepSeek Coder R1' AI coding assistant model via the specific Datasaur API sandbox and returns the model's response. " + codingAssistantUsage,
		ArgHelp:     "The text prompt to send to the DeepSeek R1 model.",
	},
	{
		Name:        "mcp_helper",
		Tool:        "call_mcp_helper",
		Label:       "MCP Helper",
		URLEnv:      "DATASAUR_MCP_HELPER_API_URL",
		TimeoutEnv:  "DATASAUR_MCP_HELPER_TIMEOUT",
		Timeout:     180 * time.Second,
		Description: "Sends a given prompt string to the 'MCP Helper' AI assistant via the specific Datasaur API sandbox and returns the model's response. Use this tool for expert assistance with generating code, debugging, or answering questions related to the Model Context Protocol (MCP).",
		ArgHelp:     "The text prompt detailing the MCP-related question, coding task, or debugging issue.",
	},
	{
		Name:        "email_helper",
		Tool:        "call_email_helper",
		Label:       "Email Helper",
		URLEnv:      "DATASAUR_EMAIL_HELPER_API_URL",
		TimeoutEnv:  "DATASAUR_EMAIL_HELPER_TIMEOUT",
		Timeout:     180 * time.Second,
		Description: "Sends a given prompt, likely containing the content of an incoming email, to the 'Email Helper' AI assistant via the specific Datasaur API sandbox. The assistant is designed to generate a professional email reply adhering to a specific format (greeting, acknowledgement, response, action, closing). Use this tool to draft email responses.",
		ArgHelp:     "The text prompt, typically the content of the email needing a reply, to send to the Email Helper model.",
	},
	{
		Name:        "weekly_report_helper",
		Tool:        "call_weekly_report_helper",
		Label:       "Weekly Report Helper",
		URLEnv:      "DATASAUR_WEEKLY_REPORT_HELPER_API_URL",
		TimeoutEnv:  "DATASAUR_WEEKLY_REPORT_HELPER_TIMEOUT",
		Timeout:     180 * time.Second,
		Description: "Sends a given prompt, containing daily updates or relevant information, to the 'Weekly Report Helper' AI assistant via the specific Datasaur API sandbox. The assistant generates a structured weekly report including sections like Executive Summary, Tasks Completed, Challenges, Meetings, Knowledge Development, Technical Issues, and Next Week's Priorities. Use this tool to consolidate updates into a formatted weekly report.",
		ArgHelp:     "The text prompt containing the daily updates or information needed to generate the weekly report.",
	},
}

// CSVSpec returns the CSV relay endpoint definition
func CSVSpec() ModelSpec {
	return csvSpec
}

// PromptSpecs returns the prompt relay endpoint definitions in registration order
func PromptSpecs() []ModelSpec {
	specs := make([]ModelSpec, len(promptSpecs))
	copy(specs, promptSpecs)
	return specs
}

// AllSpecs returns the CSV spec followed by the prompt specs
func AllSpecs() []ModelSpec {
	return append([]ModelSpec{csvSpec}, PromptSpecs()...)
}
