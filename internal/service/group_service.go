package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/namansharma3007/Equi-share/internal/middleware"
	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/storage"
	"github.com/namansharma3007/Equi-share/pkg/api"
	"github.com/namansharma3007/Equi-share/pkg/api/apiconnect"
)

var (
	errGroupNameRequired = errors.New("group name required")
	errGroupIDRequired   = errors.New("group_id required")
	errUserIDRequired    = errors.New("user_id required")
	errGroupNotFound     = errors.New("group not found")
	errNotGroupAdmin     = errors.New("only the group admin can add members")
	errNotGroupMember    = errors.New("caller is not a member of the group")
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store  storage.GroupStore
	logger *slog.Logger
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.GroupStore, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{store: store, logger: logger}
}

// CreateGroup creates a new group. The caller becomes its admin and first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	callerID := middleware.GetUserID(ctx)
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupNameRequired)
	}

	members := []string{callerID}
	seen := map[string]bool{callerID: true}
	for _, m := range req.Msg.MemberIDs {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
	}

	group := &models.Group{
		Name:        name,
		Description: req.Msg.Description,
		AdminUserID: callerID,
		Members:     members,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Group created", "group_id", group.ID, "admin", callerID, "members_count", len(members))

	return connect.NewResponse(&api.CreateGroupResponse{
		Group: &api.Group{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			AdminUserID: group.AdminUserID,
			MemberIDs:   members,
			CreatedAt:   group.CreatedAt,
		},
	}), nil
}

// AddGroupMember adds a user to a group. Only the group's admin may do this.
func (s *GroupService) AddGroupMember(ctx context.Context, req *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.AddGroupMemberResponse], error) {
	callerID := middleware.GetUserID(ctx)
	groupID := req.Msg.GroupID
	switch {
	case groupID == "":
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	case req.Msg.UserID == "":
		return nil, connect.NewError(connect.CodeInvalidArgument, errUserIDRequired)
	}

	admin, err := s.store.GroupAdmin(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, errGroupNotFound)
	}
	if err != nil {
		s.logger.Error("AddGroupMember failed - could not load group", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if admin != callerID {
		s.logger.Warn("AddGroupMember rejected", "group_id", groupID, "caller", callerID)
		return nil, connect.NewError(connect.CodePermissionDenied, errNotGroupAdmin)
	}

	if err := s.store.AddGroupMember(ctx, groupID, req.Msg.UserID); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		}
		s.logger.Error("AddGroupMember failed", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Group member added", "group_id", groupID, "user_id", req.Msg.UserID)

	return connect.NewResponse(&api.AddGroupMemberResponse{GroupID: groupID, MemberIDs: members}), nil
}

// ListGroupMembers returns a group's member IDs to its members.
func (s *GroupService) ListGroupMembers(ctx context.Context, req *connect.Request[api.ListGroupMembersRequest]) (*connect.Response[api.ListGroupMembersResponse], error) {
	callerID := middleware.GetUserID(ctx)
	groupID := req.Msg.GroupID
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}

	exists, err := s.store.GroupExists(ctx, groupID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if !exists {
		return nil, connect.NewError(connect.CodeNotFound, errGroupNotFound)
	}
	ok, err := s.store.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if !ok {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("%w: %s", errNotGroupMember, groupID))
	}

	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		s.logger.Error("ListGroupMembers failed", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.ListGroupMembersResponse{MemberIDs: members}), nil
}
