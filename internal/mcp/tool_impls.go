package mcp

import (
	"context"
	"time"

	"gpa/internal/analysis"
	"gpa/internal/envelope"
	"gpa/internal/errors"
	"gpa/internal/gitlog"
)

// repoArg extracts, normalizes, and validates the repoPath parameter.
func (s *Server) repoArg(params map[string]interface{}) (string, error) {
	raw, ok := params["repoPath"].(string)
	if !ok || raw == "" {
		return "", errors.NewInvalidParameterError("repoPath", "required")
	}
	path, err := gitlog.NormalizeRepoPath(raw)
	if err != nil {
		return "", err
	}
	if err := gitlog.ValidateRepoPath(path); err != nil {
		return "", err
	}
	return path, nil
}

// sessionArg extracts the sessionId parameter. JSON numbers arrive as
// float64.
func sessionArg(params map[string]interface{}) (int64, error) {
	v, ok := params["sessionId"].(float64)
	if !ok {
		return 0, errors.NewInvalidParameterError("sessionId", "required")
	}
	return int64(v), nil
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return fallback
}

// reader builds a git log reader for a repository with the configured
// subprocess timeout.
func (s *Server) reader(repoPath string) *gitlog.Reader {
	return gitlog.NewReader(repoPath, time.Duration(s.cfg.Git.TimeoutSeconds)*time.Second)
}

// readCommits reads up to maxCommits recent commits from a repository.
func (s *Server) readCommits(repoPath string, maxCommits int) ([]gitlog.Commit, error) {
	return s.reader(repoPath).Read(context.Background(), gitlog.Options{MaxCount: maxCommits})
}

// keywords loads the keyword sets, honoring the configured override file.
func (s *Server) keywords() analysis.KeywordSets {
	if s.cfg.Detectors.KeywordsFile != "" {
		if sets, err := analysis.LoadKeywords(s.cfg.Detectors.KeywordsFile); err == nil {
			return sets
		}
		s.logger.Warn("failed to load keyword overrides, using defaults", map[string]interface{}{
			"path": s.cfg.Detectors.KeywordsFile,
		})
	}
	return analysis.DefaultKeywords()
}

// toolSetRepository validates and registers a repository, returning the
// normalized path the caller should use with every other tool.
func (s *Server) toolSetRepository(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	repo, err := s.store.GetOrCreateRepo(repoPath)
	if err != nil {
		return nil, err
	}

	summary, err := s.reader(repoPath).Summarize(context.Background(), s.cfg.Git.MaxCommits)
	if err != nil {
		return nil, err
	}

	return envelope.Success(map[string]interface{}{
		"repoPath":     repo.Path,
		"repoName":     repo.Name,
		"totalScans":   repo.TotalScans,
		"branch":       summary.Branch,
		"commitCount":  summary.CommitCount,
		"contributors": summary.Contributors,
		"latestCommit": summary.Latest,
	}), nil
}

// toolAnalyzeCommitPatterns implements the analyzeCommitPatterns tool
func (s *Server) toolAnalyzeCommitPatterns(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	commits, err := s.readCommits(repoPath, intParam(params, "maxCommits", s.cfg.Git.MaxCommits))
	if err != nil {
		return nil, err
	}

	return envelope.Success(analysis.AnalyzeCommitPatterns(commits)), nil
}

// toolAnalyzeMessageLanguage implements the analyzeMessageLanguage tool
func (s *Server) toolAnalyzeMessageLanguage(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	commits, err := s.readCommits(repoPath, intParam(params, "maxCommits", s.cfg.Git.MaxCommits))
	if err != nil {
		return nil, err
	}

	return envelope.Success(analysis.AnalyzeMessageLanguage(commits, s.keywords())), nil
}

// toolCompareMessageVsDiff implements the compareMessageVsDiff tool
func (s *Server) toolCompareMessageVsDiff(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	commits, err := s.readCommits(repoPath, intParam(params, "maxCommits", s.cfg.Git.MaxCommits))
	if err != nil {
		return nil, err
	}

	return envelope.Success(analysis.CompareMessageVsDiff(commits, s.keywords())), nil
}

// toolGetTemporalPatterns implements the getTemporalPatterns tool
func (s *Server) toolGetTemporalPatterns(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	days := intParam(params, "days", s.cfg.Detectors.TemporalDays)
	commits, err := s.reader(repoPath).Read(context.Background(), gitlog.Options{
		Since: time.Now().AddDate(0, 0, -days),
	})
	if err != nil {
		return nil, err
	}

	return envelope.Success(analysis.AnalyzeTemporalPatterns(commits, days)), nil
}
