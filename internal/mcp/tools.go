package mcp

import "gpa/internal/envelope"

// Tool represents a tool exposed via MCP.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler is a function that handles a tool call and returns an envelope response.
type ToolHandler func(params map[string]interface{}) (*envelope.Response, error)

// RegisterTools registers all tool handlers.
func (s *Server) RegisterTools() {
	s.tools["setRepository"] = s.toolSetRepository
	s.tools["analyzeCommitPatterns"] = s.toolAnalyzeCommitPatterns
	s.tools["analyzeMessageLanguage"] = s.toolAnalyzeMessageLanguage
	s.tools["compareMessageVsDiff"] = s.toolCompareMessageVsDiff
	s.tools["getTemporalPatterns"] = s.toolGetTemporalPatterns
	s.tools["getProjectSummary"] = s.toolGetProjectSummary
	s.tools["getRepoContext"] = s.toolGetRepoContext
	s.tools["flagRepoIssue"] = s.toolFlagRepoIssue
	s.tools["saveFixAttempt"] = s.toolSaveFixAttempt
	s.tools["updateRepoProfile"] = s.toolUpdateRepoProfile
	s.tools["startSession"] = s.toolStartSession
	s.tools["submitDiscoveryAnswers"] = s.toolSubmitDiscoveryAnswers
	s.tools["saveScanResults"] = s.toolSaveScanResults
	s.tools["closeSession"] = s.toolCloseSession
	s.tools["getScanHistory"] = s.toolGetScanHistory
	s.tools["queryRecurringIssues"] = s.toolQueryRecurringIssues
	s.tools["generateFixPrompt"] = s.toolGenerateFixPrompt
	s.tools["flagBehavioralPattern"] = s.toolFlagBehavioralPattern
	s.tools["runSecurityScan"] = s.toolRunSecurityScan
	s.tools["uploadReport"] = s.toolUploadReport
}

func repoPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute or relative path to a git repository",
	}
}

func sessionIdProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Scan session id returned by startSession",
	}
}

func maxCommitsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "How many recent commits to analyze",
		"default":     50,
	}
}

// GetToolDefinitions returns all tool definitions
func (s *Server) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "setRepository",
			Description: "Validate a repository path, register it for tracking, and return the normalized path plus a git summary. Pass the returned repoPath to other tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "analyzeCommitPatterns",
			Description: "Analyze recent commit sizes and timing: many small commits, large commits, late-night commits, inconsistent sizing",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath":   repoPathProperty(),
					"maxCommits": maxCommitsProperty(),
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "analyzeMessageLanguage",
			Description: "Analyze commit message wording for minimizing, defensive, perfectionist, and vague language",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath":   repoPathProperty(),
					"maxCommits": maxCommitsProperty(),
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "compareMessageVsDiff",
			Description: "Find commits whose message disagrees with the size of the change: downplaying and vague-on-significant",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath":   repoPathProperty(),
					"maxCommits": maxCommitsProperty(),
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "getTemporalPatterns",
			Description: "Bucket commits by hour of day and day of week over a period: late nights, weekends, schedule consistency",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
					"days": map[string]interface{}{
						"type":        "integer",
						"description": "Period length in days",
						"default":     30,
					},
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "getProjectSummary",
			Description: "Get an aggregated overview of a tracked repository: scans, flagged issues, top recurring issues",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "getRepoContext",
			Description: "Get the accumulated memory for a repository: recent scans, flagged issues by recurrence, fix attempts, profile",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "flagRepoIssue",
			Description: "Flag an issue on a repository. Re-flagging the same issue type increments its occurrence count and replaces severity and notes with the latest values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
					"issueType": map[string]interface{}{
						"type":        "string",
						"description": "Stable issue identifier, e.g. hardcoded_secrets",
					},
					"severity": map[string]interface{}{
						"type":        "number",
						"description": "Severity score from 0 to 10",
					},
					"notes": map[string]interface{}{
						"type":        "string",
						"description": "Latest observation notes",
					},
				},
				"required": []string{"repoPath", "issueType"},
			},
		},
		{
			Name:        "saveFixAttempt",
			Description: "Record a remediation attempt against a repository issue type or a specific security issue. Attempts are append-only.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath":  repoPathProperty(),
					"issueType": map[string]interface{}{"type": "string"},
					"securityIssueId": map[string]interface{}{
						"type":        "integer",
						"description": "Security issue id, as an alternative to repoPath + issueType",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "What was tried",
					},
					"outcome": map[string]interface{}{"type": "string"},
					"success": map[string]interface{}{"type": "boolean"},
				},
				"required": []string{"description"},
			},
		},
		{
			Name:        "updateRepoProfile",
			Description: "Replace the repository's profile metadata (tech stack, team size, project type). The profile is replaced wholesale, not merged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath":    repoPathProperty(),
					"techStack":   map[string]interface{}{"type": "string"},
					"teamSize":    map[string]interface{}{"type": "integer"},
					"projectType": map[string]interface{}{"type": "string"},
					"metadata": map[string]interface{}{
						"type":        "object",
						"description": "Free-form extra metadata, stored as JSON",
					},
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "startSession",
			Description: "Open a new scan session against a repository. If an earlier session was never closed, no session is created: the warning carries the existing session id and it must be closed first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "submitDiscoveryAnswers",
			Description: "Store the user's self-assessment answers on a session. Submitting again replaces the stored answers and increments the pattern's occurrence count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIdProperty(),
					"rating": map[string]interface{}{
						"type":        "integer",
						"description": "Quality rating from 1 to 10",
					},
					"potential": map[string]interface{}{
						"type":        "string",
						"description": "What the user sees as the project's biggest potential",
					},
					"concerns": map[string]interface{}{
						"type":        "string",
						"description": "The user's concerns about the code",
					},
				},
				"required": []string{"sessionId", "rating", "potential", "concerns"},
			},
		},
		{
			Name:        "saveScanResults",
			Description: "Persist scan findings under an open session and complete it. Also runs the commit detectors against the session's repository unless analyzeGit is false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIdProperty(),
					"findings": map[string]interface{}{
						"type":        "array",
						"description": "Scanner findings",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"severity": map[string]interface{}{
									"type": "string",
									"enum": []string{"critical", "high", "medium", "low", "info"},
								},
								"category": map[string]interface{}{"type": "string"},
								"summary":  map[string]interface{}{"type": "string"},
								"url":      map[string]interface{}{"type": "string"},
							},
							"required": []string{"severity", "summary"},
						},
					},
					"durationMs": map[string]interface{}{
						"type":        "integer",
						"description": "Scan duration in milliseconds",
					},
					"analyzeGit": map[string]interface{}{
						"type":    "boolean",
						"default": true,
					},
				},
				"required": []string{"sessionId"},
			},
		},
		{
			Name:        "closeSession",
			Description: "Abandon an open session without results. Closing an already terminal session is a no-op.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIdProperty(),
				},
				"required": []string{"sessionId"},
			},
		},
		{
			Name:        "getScanHistory",
			Description: "List a repository's scan sessions, newest first",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
					"limit": map[string]interface{}{
						"type":    "integer",
						"default": 10,
					},
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "queryRecurringIssues",
			Description: "List issues that keep coming back across scans of a repository, most frequent first",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Substring filter on the issue signature",
					},
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "generateFixPrompt",
			Description: "Build a remediation prompt for a security issue, including past fix attempts and recurrence history",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"securityIssueId": map[string]interface{}{
						"type": "integer",
					},
				},
				"required": []string{"securityIssueId"},
			},
		},
		{
			Name:        "flagBehavioralPattern",
			Description: "Flag a behavioral pattern on a session. Re-flagging the same pattern increments its occurrence count and replaces severity and evidence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIdProperty(),
					"patternName": map[string]interface{}{
						"type":        "string",
						"description": "Stable pattern identifier, e.g. rushes_commits",
					},
					"severity": map[string]interface{}{
						"type": "string",
						"enum": []string{"info", "low", "medium", "high"},
					},
					"evidence": map[string]interface{}{"type": "string"},
				},
				"required": []string{"sessionId", "patternName"},
			},
		},
		{
			Name:        "runSecurityScan",
			Description: "Run the configured external vulnerability scanner against a repository and return its findings. Pass the findings to saveScanResults to persist them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repoPath": repoPathProperty(),
				},
				"required": []string{"repoPath"},
			},
		},
		{
			Name:        "uploadReport",
			Description: "Upload a session's full results to the configured vault and return the file id",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIdProperty(),
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Display name for the stored report",
					},
				},
				"required": []string{"sessionId"},
			},
		},
	}
}
