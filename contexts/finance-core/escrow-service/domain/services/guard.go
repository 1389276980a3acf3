package services

import (
	"strings"

	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
)

// Operation names the escrow actions the guard decides on.
type Operation string

const (
	OperationCreate         Operation = "create"
	OperationRead           Operation = "read"
	OperationFund           Operation = "fund"
	OperationApproveRelease Operation = "approve_release"
	OperationRaiseDispute   Operation = "raise_dispute"
)

// ResolveRole maps actorID to its party on escrow. Blank ids never match.
func ResolveRole(escrow entities.Escrow, actorID string) (entities.Role, bool) {
	actorID = strings.TrimSpace(actorID)
	switch {
	case actorID == "":
		return "", false
	case actorID == escrow.ClientID:
		return entities.RoleClient, true
	case actorID == escrow.WorkerID:
		return entities.RoleWorker, true
	default:
		return "", false
	}
}

// AuthorizeCreate allows only the project's client to open an escrow for it.
func AuthorizeCreate(project entities.Project, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" || actorID != project.ClientID {
		return domainerrors.ErrNotProjectClient
	}
	return nil
}

// Authorize is the single gate in front of every read and mutation of an
// existing escrow. Third parties are always denied.
func Authorize(operation Operation, actorID string, escrow entities.Escrow) error {
	role, ok := ResolveRole(escrow, actorID)
	switch operation {
	case OperationFund:
		if !ok || role != entities.RoleClient {
			return domainerrors.ErrNotEscrowClient
		}
		return nil
	case OperationRead, OperationApproveRelease, OperationRaiseDispute:
		if !ok {
			return domainerrors.ErrNotParticipant
		}
		return nil
	default:
		return domainerrors.ErrNotParticipant
	}
}
