package aws

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RepositorySummary is one entry of `codecommit list-repositories`.
type RepositorySummary struct {
	ID   string
	Name string
}

// RepositoryList is the `codecommit list-repositories` document.
type RepositoryList struct {
	Repositories []RepositorySummary
}

func (l *RepositoryList) UnmarshalJSON(data []byte) error {
	var raw struct {
		Repositories []struct {
			RepositoryID   string `json:"repositoryId"`
			RepositoryName string `json:"repositoryName"`
		} `json:"repositories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.Repositories = make([]RepositorySummary, 0, len(raw.Repositories))
	for _, r := range raw.Repositories {
		if r.RepositoryName == "" {
			continue
		}
		l.Repositories = append(l.Repositories, RepositorySummary{ID: r.RepositoryID, Name: r.RepositoryName})
	}
	return nil
}

// RepositoryInfo is the `codecommit get-repository` document.
type RepositoryInfo struct {
	AccountID     string
	ARN           string
	CloneURLHTTP  string
	CloneURLSSH   string
	CreatedAt     time.Time
	DefaultBranch string
	Description   string
	ID            string
	LastModified  time.Time
	Name          string
}

func (r *RepositoryInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Metadata *struct {
			AccountID             string   `json:"accountId"`
			Arn                   string   `json:"Arn"`
			CloneURLHTTP          string   `json:"cloneUrlHttp"`
			CloneURLSSH           string   `json:"cloneUrlSsh"`
			CreationDate          flexTime `json:"creationDate"`
			DefaultBranch         string   `json:"defaultBranch"`
			LastModifiedDate      flexTime `json:"lastModifiedDate"`
			RepositoryDescription string   `json:"repositoryDescription"`
			RepositoryID          string   `json:"repositoryId"`
			RepositoryName        string   `json:"repositoryName"`
		} `json:"repositoryMetadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Metadata == nil {
		return fmt.Errorf("%w: repositoryMetadata", ErrMissingEnvelope)
	}

	m := raw.Metadata
	*r = RepositoryInfo{
		AccountID:     m.AccountID,
		ARN:           m.Arn,
		CloneURLHTTP:  m.CloneURLHTTP,
		CloneURLSSH:   m.CloneURLSSH,
		CreatedAt:     m.CreationDate.Time(),
		DefaultBranch: m.DefaultBranch,
		Description:   m.RepositoryDescription,
		ID:            m.RepositoryID,
		LastModified:  m.LastModifiedDate.Time(),
		Name:          m.RepositoryName,
	}
	return nil
}

// PullRequestIDs is the `codecommit list-pull-requests` document.
type PullRequestIDs struct {
	IDs []string
}

func (p *PullRequestIDs) UnmarshalJSON(data []byte) error {
	var raw struct {
		PullRequestIDs []flexString `json:"pullRequestIds"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.IDs = make([]string, 0, len(raw.PullRequestIDs))
	for _, id := range raw.PullRequestIDs {
		if id != "" {
			p.IDs = append(p.IDs, string(id))
		}
	}
	return nil
}

type PullRequestStatus string

const (
	PullRequestStatusOpen   PullRequestStatus = "OPEN"
	PullRequestStatusClosed PullRequestStatus = "CLOSED"
)

// PullRequestTarget is the source/destination pair of a pull request.
type PullRequestTarget struct {
	DestinationCommit    string
	DestinationReference string
	IsMerged             bool
	MergeBase            string
	RepositoryName       string
	SourceCommit         string
	SourceReference      string
}

// SourceBranch returns the source reference without the refs/heads/ prefix.
func (t PullRequestTarget) SourceBranch() string {
	return strings.TrimPrefix(t.SourceReference, "refs/heads/")
}

// DestinationBranch returns the destination reference without the refs/heads/ prefix.
func (t PullRequestTarget) DestinationBranch() string {
	return strings.TrimPrefix(t.DestinationReference, "refs/heads/")
}

// ApprovalRule is a rule attached directly to a pull request.
type ApprovalRule struct {
	Content string
	Name    string
}

// PullRequest is the `codecommit get-pull-request` document.
type PullRequest struct {
	ApprovalRules []ApprovalRule
	AuthorARN     string
	CreatedAt     time.Time
	Description   string
	ID            string
	LastActivity  time.Time
	RevisionID    string // empty when the pull request has no open revision
	Status        PullRequestStatus
	Targets       []PullRequestTarget
	Title         string
}

func (pr *PullRequest) UnmarshalJSON(data []byte) error {
	type rawTarget struct {
		DestinationCommit    string `json:"destinationCommit"`
		DestinationReference string `json:"destinationReference"`
		MergeBase            string `json:"mergeBase"`
		MergeMetadata        struct {
			IsMerged bool `json:"isMerged"`
		} `json:"mergeMetadata"`
		RepositoryName  string `json:"repositoryName"`
		SourceCommit    string `json:"sourceCommit"`
		SourceReference string `json:"sourceReference"`
	}
	var raw struct {
		PullRequest *struct {
			ApprovalRules []struct {
				ApprovalRuleContent string `json:"approvalRuleContent"`
				ApprovalRuleName    string `json:"approvalRuleName"`
			} `json:"approvalRules"`
			AuthorArn          string      `json:"authorArn"`
			CreationDate       flexTime    `json:"creationDate"`
			Description        string      `json:"description"`
			LastActivityDate   flexTime    `json:"lastActivityDate"`
			PullRequestID      flexString  `json:"pullRequestId"`
			PullRequestStatus  string      `json:"pullRequestStatus"`
			PullRequestTargets []rawTarget `json:"pullRequestTargets"`
			RevisionID         flexString  `json:"revisionId"`
			Title              string      `json:"title"`
		} `json:"pullRequest"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.PullRequest == nil {
		return fmt.Errorf("%w: pullRequest", ErrMissingEnvelope)
	}

	p := raw.PullRequest
	*pr = PullRequest{
		AuthorARN:    p.AuthorArn,
		CreatedAt:    p.CreationDate.Time(),
		Description:  p.Description,
		ID:           string(p.PullRequestID),
		LastActivity: p.LastActivityDate.Time(),
		RevisionID:   string(p.RevisionID),
		Status:       PullRequestStatus(p.PullRequestStatus),
		Title:        p.Title,
	}
	for _, rule := range p.ApprovalRules {
		pr.ApprovalRules = append(pr.ApprovalRules, ApprovalRule{Content: rule.ApprovalRuleContent, Name: rule.ApprovalRuleName})
	}
	for _, t := range p.PullRequestTargets {
		pr.Targets = append(pr.Targets, PullRequestTarget{
			DestinationCommit:    t.DestinationCommit,
			DestinationReference: t.DestinationReference,
			IsMerged:             t.MergeMetadata.IsMerged,
			MergeBase:            t.MergeBase,
			RepositoryName:       t.RepositoryName,
			SourceCommit:         t.SourceCommit,
			SourceReference:      t.SourceReference,
		})
	}
	return nil
}

// Author returns the last segment of the author ARN, usually a user or role session name.
func (pr PullRequest) Author() string {
	if i := strings.LastIndex(pr.AuthorARN, "/"); i >= 0 {
		return pr.AuthorARN[i+1:]
	}
	return pr.AuthorARN
}

// Target returns the first pull request target, if any.
func (pr PullRequest) Target() (PullRequestTarget, bool) {
	if len(pr.Targets) == 0 {
		return PullRequestTarget{}, false
	}
	return pr.Targets[0], true
}

// PipelineSummary is one entry of `codepipeline list-pipelines`.
type PipelineSummary struct {
	CreatedAt time.Time
	Name      string
	Type      string
	UpdatedAt time.Time
	Version   int
}

// PipelineList is the `codepipeline list-pipelines` document.
type PipelineList struct {
	Pipelines []PipelineSummary
}

func (l *PipelineList) UnmarshalJSON(data []byte) error {
	var raw struct {
		Pipelines []struct {
			Created      flexTime `json:"created"`
			Name         string   `json:"name"`
			PipelineType string   `json:"pipelineType"`
			Updated      flexTime `json:"updated"`
			Version      int      `json:"version"`
		} `json:"pipelines"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.Pipelines = make([]PipelineSummary, 0, len(raw.Pipelines))
	for _, p := range raw.Pipelines {
		if p.Name == "" {
			continue
		}
		l.Pipelines = append(l.Pipelines, PipelineSummary{
			CreatedAt: p.Created.Time(),
			Name:      p.Name,
			Type:      p.PipelineType,
			UpdatedAt: p.Updated.Time(),
			Version:   p.Version,
		})
	}
	return nil
}

// ActionStatusInProgress is the status of an action awaiting completion,
// including a manual approval waiting for a result.
const ActionStatusInProgress = "InProgress"

// ActionState is the latest execution of one action in a stage.
type ActionState struct {
	ExecutionID      string
	ExternalURL      string
	LastStatusChange time.Time
	Name             string
	Status           string
	Summary          string
	Token            string // approval token, present only on pending manual approvals
}

// IsPendingApproval reports whether the action is a manual approval waiting for a result.
func (a ActionState) IsPendingApproval() bool {
	return a.Status == ActionStatusInProgress && a.Token != ""
}

// StageState is the latest execution of one stage.
type StageState struct {
	Actions        []ActionState
	ExecutionID    string
	InboundEnabled bool
	Name           string
	Status         string
}

// PendingApproval is an action waiting for an Approved or Rejected result.
type PendingApproval struct {
	Action   string
	Pipeline string
	Since    time.Time
	Stage    string
	Token    string
}

// PipelineState is the `codepipeline get-pipeline-state` document.
type PipelineState struct {
	CreatedAt time.Time
	Name      string
	Stages    []StageState
	UpdatedAt time.Time
	Version   int
}

func (s *PipelineState) UnmarshalJSON(data []byte) error {
	type rawAction struct {
		ActionName      string `json:"actionName"`
		LatestExecution *struct {
			ActionExecutionID    string   `json:"actionExecutionId"`
			ExternalExecutionURL string   `json:"externalExecutionUrl"`
			LastStatusChange     flexTime `json:"lastStatusChange"`
			Status               string   `json:"status"`
			Summary              string   `json:"summary"`
			Token                string   `json:"token"`
		} `json:"latestExecution"`
	}
	type rawStage struct {
		ActionStates           []rawAction `json:"actionStates"`
		InboundTransitionState *struct {
			Enabled bool `json:"enabled"`
		} `json:"inboundTransitionState"`
		LatestExecution *struct {
			PipelineExecutionID string `json:"pipelineExecutionId"`
			Status              string `json:"status"`
		} `json:"latestExecution"`
		StageName string `json:"stageName"`
	}
	var raw struct {
		Created         flexTime   `json:"created"`
		PipelineName    *string    `json:"pipelineName"`
		PipelineVersion int        `json:"pipelineVersion"`
		StageStates     []rawStage `json:"stageStates"`
		Updated         flexTime   `json:"updated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.PipelineName == nil {
		return fmt.Errorf("%w: pipelineName", ErrMissingEnvelope)
	}

	*s = PipelineState{
		CreatedAt: raw.Created.Time(),
		Name:      *raw.PipelineName,
		UpdatedAt: raw.Updated.Time(),
		Version:   raw.PipelineVersion,
	}
	for _, rs := range raw.StageStates {
		stage := StageState{
			Name:           rs.StageName,
			InboundEnabled: rs.InboundTransitionState == nil || rs.InboundTransitionState.Enabled,
		}
		if rs.LatestExecution != nil {
			stage.ExecutionID = rs.LatestExecution.PipelineExecutionID
			stage.Status = rs.LatestExecution.Status
		}
		for _, ra := range rs.ActionStates {
			action := ActionState{Name: ra.ActionName}
			if le := ra.LatestExecution; le != nil {
				action.ExecutionID = le.ActionExecutionID
				action.ExternalURL = le.ExternalExecutionURL
				action.LastStatusChange = le.LastStatusChange.Time()
				action.Status = le.Status
				action.Summary = le.Summary
				action.Token = le.Token
			}
			stage.Actions = append(stage.Actions, action)
		}
		s.Stages = append(s.Stages, stage)
	}
	return nil
}

// PendingApprovals returns every manual approval waiting for a result, in stage order.
func (s PipelineState) PendingApprovals() []PendingApproval {
	var pending []PendingApproval
	for _, stage := range s.Stages {
		for _, action := range stage.Actions {
			if !action.IsPendingApproval() {
				continue
			}
			pending = append(pending, PendingApproval{
				Action:   action.Name,
				Pipeline: s.Name,
				Since:    action.LastStatusChange,
				Stage:    stage.Name,
				Token:    action.Token,
			})
		}
	}
	return pending
}

// SourceRevision is the source artifact revision an execution ran with.
type SourceRevision struct {
	Action     string
	RevisionID string
	Summary    string
}

// PipelineExecution is one entry of `codepipeline list-pipeline-executions`.
type PipelineExecution struct {
	ID              string
	SourceRevisions []SourceRevision
	StartedAt       time.Time
	Status          string
	Trigger         string
	UpdatedAt       time.Time
}

// PipelineExecutions is the `codepipeline list-pipeline-executions` document.
type PipelineExecutions struct {
	Executions []PipelineExecution
}

func (p *PipelineExecutions) UnmarshalJSON(data []byte) error {
	var raw struct {
		Summaries []struct {
			LastUpdateTime      flexTime `json:"lastUpdateTime"`
			PipelineExecutionID string   `json:"pipelineExecutionId"`
			SourceRevisions     []struct {
				ActionName      string `json:"actionName"`
				RevisionID      string `json:"revisionId"`
				RevisionSummary string `json:"revisionSummary"`
			} `json:"sourceRevisions"`
			StartTime flexTime `json:"startTime"`
			Status    string   `json:"status"`
			Trigger   struct {
				TriggerType string `json:"triggerType"`
			} `json:"trigger"`
		} `json:"pipelineExecutionSummaries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Executions = make([]PipelineExecution, 0, len(raw.Summaries))
	for _, s := range raw.Summaries {
		exec := PipelineExecution{
			ID:        s.PipelineExecutionID,
			StartedAt: s.StartTime.Time(),
			Status:    s.Status,
			Trigger:   s.Trigger.TriggerType,
			UpdatedAt: s.LastUpdateTime.Time(),
		}
		for _, rev := range s.SourceRevisions {
			exec.SourceRevisions = append(exec.SourceRevisions, SourceRevision{
				Action:     rev.ActionName,
				RevisionID: rev.RevisionID,
				Summary:    rev.RevisionSummary,
			})
		}
		p.Executions = append(p.Executions, exec)
	}
	return nil
}
