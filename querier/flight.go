// flight.go
package querier

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/apache/arrow/go/v14/arrow/flight"
	flightgen "github.com/apache/arrow/go/v14/arrow/flight/gen/flight"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/tablefs/tablefs-querier/core"
)

// FlightServer streams resolved tables over Arrow Flight. A flight
// descriptor of type PATH names the file to fetch; DoGet replays the
// table as a single record batch. Resolution goes through the same
// cache as the HTTP query path.
type FlightServer struct {
	flightgen.UnimplementedFlightServiceServer
	queryClient *QueryClient
	location    string
}

// NewFlightServer creates a Flight server instance. location is the
// grpc:// URI clients are told to fetch tickets from.
func NewFlightServer(queryClient *QueryClient, location string) *FlightServer {
	return &FlightServer{
		queryClient: queryClient,
		location:    location,
	}
}

// GetFlightInfo resolves the table named by a PATH descriptor and hands
// back a ticket for it.
func (s *FlightServer) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	if desc.Type != flight.DescriptorPATH || len(desc.Path) == 0 {
		return nil, fmt.Errorf("unsupported flight descriptor type: %v", desc.Type)
	}

	path := strings.Join(desc.Path, "/")
	ctx = core.WithDefaultLogger(ctx, "flight")
	core.Infof(ctx, "Flight info requested for %s", path)

	table, err := s.queryClient.ResolveTable(ctx, path)
	if err != nil {
		core.Errorf(ctx, "Failed to resolve %s: %v", path, err)
		return nil, err
	}

	info := &flight.FlightInfo{
		FlightDescriptor: desc,
		Endpoint: []*flight.FlightEndpoint{
			{
				Ticket:   &flight.Ticket{Ticket: []byte(path)},
				Location: []*flight.Location{{Uri: s.location}},
			},
		},
		TotalRecords: int64(len(table.Rows)),
		TotalBytes:   -1,
		Schema:       []byte{}, // sent in DoGet
	}
	return info, nil
}

// DoGet streams the ticketed table as one Arrow record batch.
func (s *FlightServer) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	path := string(ticket.Ticket)
	ctx := core.WithDefaultLogger(stream.Context(), "flight")
	core.Infof(ctx, "DoGet called for %s", path)

	table, err := s.queryClient.ResolveTable(ctx, path)
	if err != nil {
		return err
	}

	rec, err := tableRecord(table)
	if err != nil {
		return fmt.Errorf("failed to convert table to record batch: %w", err)
	}
	defer rec.Release()

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(rec.Schema()))
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	return writer.Close()
}

// ListFlights is not supported; every table is addressed directly by
// path.
func (s *FlightServer) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	return nil
}

// Handshake echoes back any handshake request.
func (s *FlightServer) Handshake(stream flight.FlightService_HandshakeServer) error {
	for {
		req, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := stream.Send(&flight.HandshakeResponse{Payload: req.Payload}); err != nil {
			return err
		}
	}
}

// StartFlightServer serves Flight on the given port until the listener
// fails.
func StartFlightServer(port int, queryClient *QueryClient) error {
	server := NewFlightServer(queryClient, fmt.Sprintf("grpc://localhost:%d", port))
	s := grpc.NewServer()
	flightgen.RegisterFlightServiceServer(s, server)
	reflection.Register(s)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(lis)
}
