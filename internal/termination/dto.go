package termination

type TerminateContractDTO struct {
	Reason       string `json:"reason"`
	TerminatedBy int64  `json:"terminated_by"`
}

type TerminationHistoryResponse struct {
	Records []TerminationRecord `json:"records"`
	Total   int                 `json:"total"`
}
