package mcp

import (
	"encoding/json"
	"fmt"

	"gpa/internal/envelope"
	"gpa/internal/errors"
	"gpa/internal/storage"
)

// toolGetProjectSummary implements the getProjectSummary tool
func (s *Server) toolGetProjectSummary(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	summary, err := s.reporter.Summary(repoPath)
	if err != nil {
		return nil, err
	}
	return envelope.Success(summary), nil
}

// toolGetRepoContext implements the getRepoContext tool
func (s *Server) toolGetRepoContext(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	ctx, err := s.store.GetRepoContext(repoPath)
	if err != nil {
		return nil, err
	}
	return envelope.Success(ctx), nil
}

// toolFlagRepoIssue implements the flagRepoIssue tool
func (s *Server) toolFlagRepoIssue(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	issueType, ok := params["issueType"].(string)
	if !ok || issueType == "" {
		return nil, errors.NewInvalidParameterError("issueType", "required")
	}

	severity := 0.0
	if v, ok := params["severity"].(float64); ok {
		severity = v
	}
	notes, _ := params["notes"].(string)

	repo, err := s.store.GetOrCreateRepo(repoPath)
	if err != nil {
		return nil, err
	}

	count, err := s.store.FlagIssue(repo.ID, issueType, severity, notes)
	if err != nil {
		return nil, err
	}

	return envelope.Success(map[string]interface{}{
		"issueType":       issueType,
		"occurrenceCount": count,
		"message":         flagMessage(issueType, count),
	}), nil
}

func flagMessage(issueType string, count int) string {
	if count == 1 {
		return fmt.Sprintf("Issue %q flagged for the first time", issueType)
	}
	return fmt.Sprintf("Issue %q has now been flagged %d times", issueType, count)
}

// toolSaveFixAttempt implements the saveFixAttempt tool
func (s *Server) toolSaveFixAttempt(params map[string]interface{}) (*envelope.Response, error) {
	description, ok := params["description"].(string)
	if !ok || description == "" {
		return nil, errors.NewInvalidParameterError("description", "required")
	}

	attempt := storage.FixAttempt{Description: description}
	if v, ok := params["outcome"].(string); ok {
		attempt.Outcome = v
	}
	if v, ok := params["success"].(bool); ok {
		attempt.Success = &v
	}

	if v, ok := params["securityIssueId"].(float64); ok {
		id := int64(v)
		if _, err := s.store.GetSecurityIssue(id); err != nil {
			return nil, err
		}
		attempt.SecurityIssueID = &id
	} else {
		repoPath, err := s.repoArg(params)
		if err != nil {
			return nil, err
		}
		repo, err := s.store.GetRepoByPath(repoPath)
		if err != nil {
			return nil, err
		}
		attempt.RepoID = &repo.ID
		if v, ok := params["issueType"].(string); ok {
			attempt.IssueType = v
		}
	}

	id, err := s.store.AddFixAttempt(attempt)
	if err != nil {
		return nil, err
	}
	return envelope.Success(map[string]interface{}{
		"fixAttemptId": id,
	}), nil
}

// toolUpdateRepoProfile implements the updateRepoProfile tool
func (s *Server) toolUpdateRepoProfile(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	repo, err := s.store.GetOrCreateRepo(repoPath)
	if err != nil {
		return nil, err
	}

	profile := storage.RepoProfile{RepoID: repo.ID}
	if v, ok := params["techStack"].(string); ok {
		profile.TechStack = v
	}
	if v, ok := params["teamSize"].(float64); ok {
		profile.TeamSize = int(v)
	}
	if v, ok := params["projectType"].(string); ok {
		profile.ProjectType = v
	}
	if v, ok := params["metadata"].(map[string]interface{}); ok {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, errors.NewInvalidParameterError("metadata", "not serializable")
		}
		profile.MetadataJSON = string(raw)
	}

	if err := s.store.UpsertProfile(profile); err != nil {
		return nil, err
	}
	return envelope.Success(map[string]interface{}{
		"repoPath": repo.Path,
		"profile":  profile,
	}), nil
}

// toolGetScanHistory implements the getScanHistory tool
func (s *Server) toolGetScanHistory(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	entries, err := s.reporter.History(repoPath, intParam(params, "limit", 10))
	if err != nil {
		return nil, err
	}
	return envelope.Success(map[string]interface{}{
		"repoPath": repoPath,
		"scans":    entries,
	}), nil
}

// toolQueryRecurringIssues implements the queryRecurringIssues tool
func (s *Server) toolQueryRecurringIssues(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	filter, _ := params["filter"].(string)
	issues, err := s.reporter.RecurringIssues(repoPath, filter)
	if err != nil {
		return nil, err
	}
	return envelope.Success(map[string]interface{}{
		"repoPath": repoPath,
		"issues":   issues,
	}), nil
}

// toolGenerateFixPrompt implements the generateFixPrompt tool
func (s *Server) toolGenerateFixPrompt(params map[string]interface{}) (*envelope.Response, error) {
	v, ok := params["securityIssueId"].(float64)
	if !ok {
		return nil, errors.NewInvalidParameterError("securityIssueId", "required")
	}

	prompt, err := s.reporter.FixPrompt(int64(v))
	if err != nil {
		return nil, err
	}
	return envelope.Success(map[string]interface{}{
		"securityIssueId": int64(v),
		"prompt":          prompt,
	}), nil
}
