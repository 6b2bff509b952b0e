package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	ledger *ledger.Ledger
}

func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

// CreateGroup creates a group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "members_count", len(req.Msg.Members))

	group, err := s.ledger.CreateGroup(ctx, userID, req.Msg.Name, req.Msg.Members)
	if err != nil {
		return nil, toConnectError("CreateGroup", err)
	}
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.ledger.GetGroup(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.ledger.ListGroups(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListGroups", err)
	}

	out := make([]*api.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, toAPIGroup(g))
	}
	slog.Info("ListGroups successful", "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

func (s *GroupService) AddGroupMembers(ctx context.Context, req *connect.Request[api.AddGroupMembersRequest]) (*connect.Response[api.AddGroupMembersResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddGroupMembers request received", "group_id", req.Msg.GroupID, "members_count", len(req.Msg.Members))

	group, err := s.ledger.AddGroupMembers(ctx, userID, req.Msg.GroupID, req.Msg.Members)
	if err != nil {
		return nil, toConnectError("AddGroupMembers", err)
	}
	return connect.NewResponse(&api.AddGroupMembersResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup deletes a fully settled group. Creator only.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.ledger.DeleteGroup(ctx, userID, req.Msg.GroupID); err != nil {
		return nil, toConnectError("DeleteGroup", err)
	}
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
