package ledger

import (
	"context"
	"strings"

	domain "github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/domain/shared"
	"github.com/workledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientService handles client and job business operations
type ClientService struct {
	db         *persistence.Database
	clientRepo *persistence.Repository[domain.Client]
	jobRepo    *persistence.Repository[domain.Job]
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	db *persistence.Database,
	clientRepo *persistence.Repository[domain.Client],
	jobRepo *persistence.Repository[domain.Job],
	events shared.EventPublisher,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		db:         db,
		clientRepo: clientRepo,
		jobRepo:    jobRepo,
		events:     events,
		logger:     logger.Named("client_service"),
	}
}

// SaveClient creates or updates a client. Fields are normalized first and the
// (name, phone, address) triple is checked for duplicates case-insensitively;
// the store's unique index backs the check up under concurrency.
func (s *ClientService) SaveClient(ctx context.Context, req SaveClientRequest) (*ClientResponse, error) {
	client, err := domain.NewClient(req.Name, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	client.ID = req.ID

	duplicate, err := s.findDuplicate(ctx, client)
	if err != nil {
		return nil, err
	}
	if duplicate != nil && duplicate.ID != client.ID {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A client with this name, phone and address already exists")
	}

	if req.ID > 0 {
		existing, err := s.clientRepo.FindByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		client.CreatedAt = existing.CreatedAt
	}

	id, err := s.clientRepo.Save(ctx, client)
	if err != nil {
		return nil, err
	}
	client.ID = id

	s.publish(ctx, id)

	response := ToClientResponse(client)
	return &response, nil
}

// SaveClientWithJobs persists a client and its job list as one atomic unit.
// Either every row lands or none does.
func (s *ClientService) SaveClientWithJobs(ctx context.Context, req SaveClientRequest, jobs []JobInput) (*ClientWithJobsResponse, error) {
	client, err := domain.NewClient(req.Name, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	client.ID = req.ID

	duplicate, err := s.findDuplicate(ctx, client)
	if err != nil {
		return nil, err
	}
	if duplicate != nil && duplicate.ID != client.ID {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A client with this name, phone and address already exists")
	}

	response, err := persistence.InTransaction(ctx, s.db, func(tx *gorm.DB) (*ClientWithJobsResponse, error) {
		clientRepo := s.clientRepo.WithTx(tx)
		jobRepo := s.jobRepo.WithTx(tx)

		clientID, err := clientRepo.Save(ctx, client)
		if err != nil {
			return nil, err
		}
		client.ID = clientID

		out := &ClientWithJobsResponse{
			ClientResponse: ToClientResponse(client),
			Jobs:           make([]JobResponse, 0, len(jobs)),
		}
		for _, input := range jobs {
			job, err := domain.NewJob(clientID, input.Name, input.UnitPrice, input.UnitLabel)
			if err != nil {
				return nil, err
			}
			job.ID = input.ID
			if _, err := jobRepo.Save(ctx, job); err != nil {
				return nil, err
			}
			out.Jobs = append(out.Jobs, ToJobResponse(job))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, client.ID)
	return response, nil
}

// GetClient retrieves one client by identity
func (s *ClientService) GetClient(ctx context.Context, id int64) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// GetClientsPaged returns one page of clients ordered by name, with the
// total row count for the pager.
func (s *ClientService) GetClientsPaged(ctx context.Context, skip, take int) (*PagedResponse[ClientResponse], error) {
	total, err := s.clientRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	clients, err := s.clientRepo.FindFiltered(ctx,
		persistence.OrderBy("lower(name) asc"),
		persistence.Paged(skip, take),
	)
	if err != nil {
		return nil, err
	}

	items := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, ToClientResponse(&clients[i]))
	}
	return &PagedResponse[ClientResponse]{Items: items, Total: total, Skip: skip, Take: take}, nil
}

// GetJobsForClient returns every job belonging to a client
func (s *ClientService) GetJobsForClient(ctx context.Context, clientID int64) ([]JobResponse, error) {
	jobs, err := s.jobRepo.FindFiltered(ctx,
		persistence.Where("client_id = ?", clientID),
		persistence.OrderBy("lower(name) asc"),
	)
	if err != nil {
		return nil, err
	}
	responses := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, ToJobResponse(&jobs[i]))
	}
	return responses, nil
}

// DeleteClient removes a client and all of its jobs in one transaction
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	if _, err := s.clientRepo.FindByID(ctx, id); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&domain.Job{}).Error; err != nil {
			return err
		}
		client := domain.Client{}
		client.ID = id
		if _, err := s.clientRepo.WithTx(tx).Delete(ctx, &client); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, id)
	return nil
}

// findDuplicate looks for another client with the same normalized identity
func (s *ClientService) findDuplicate(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	matches, err := s.clientRepo.FindFiltered(ctx, persistence.Where(
		"lower(name) = ? AND lower(phone) = ? AND lower(address) = ?",
		strings.ToLower(client.Name),
		strings.ToLower(client.Phone),
		strings.ToLower(client.Address),
	))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (s *ClientService) publish(ctx context.Context, clientID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, domain.NewClientChangedEvent(clientID)); err != nil {
		s.logger.Warn("failed to publish client change", zap.Int64("client_id", clientID), zap.Error(err))
	}
}
